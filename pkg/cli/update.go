package cli

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"regexp"
	"runtime"
	"sort"
	"strings"
	"time"

	"github.com/blang/semver"
	"github.com/rhysd/go-github-selfupdate/selfupdate"
)

// Version is the running build's version, overridden with -ldflags at release time.
var Version = "0.1.0"

const githubAPI = "https://api.github.com"

var semverRe = regexp.MustCompile(`v?\d+\.\d+\.\d+(-[0-9A-Za-z.-]+)?(\+[0-9A-Za-z.-]+)?`)

type githubAsset struct {
	Name               string `json:"name"`
	BrowserDownloadURL string `json:"browser_download_url"`
}

type githubRelease struct {
	TagName    string        `json:"tag_name"`
	Name       string        `json:"name"`
	Draft      bool          `json:"draft"`
	Prerelease bool          `json:"prerelease"`
	Assets     []githubAsset `json:"assets"`
}

// detectLatest queries the GitHub Releases API under apiBase and returns the
// highest published, non-prerelease semver release. Tags only need to contain
// a version (e.g. "kernelimg-v1.2.3"). It returns (nil, nil) when no release
// qualifies.
func detectLatest(apiBase, repo string) (*selfupdate.Release, error) {
	apiURL := fmt.Sprintf("%s/repos/%s/releases", strings.TrimRight(apiBase, "/"), repo)
	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Get(apiURL)
	if err != nil {
		return nil, fmt.Errorf("github API request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed reading github response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("github API returned status %d: %s", resp.StatusCode, string(body))
	}

	var releases []githubRelease
	if err := json.Unmarshal(body, &releases); err != nil {
		return nil, fmt.Errorf("failed to decode github releases: %w", err)
	}

	type candidate struct {
		ver semver.Version
		rel githubRelease
	}
	var candidates []candidate
	for _, r := range releases {
		if r.Draft || r.Prerelease {
			continue
		}
		match := semverRe.FindString(r.TagName)
		if match == "" {
			match = semverRe.FindString(r.Name)
		}
		if match == "" {
			continue
		}
		v, err := semver.ParseTolerant(match)
		if err != nil {
			continue
		}
		candidates = append(candidates, candidate{ver: v, rel: r})
	}
	if len(candidates) == 0 {
		return nil, nil
	}

	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].ver.GT(candidates[j].ver)
	})
	best := candidates[0]
	owner, name, _ := strings.Cut(repo, "/")
	return &selfupdate.Release{
		Version:   best.ver,
		AssetURL:  pickAsset(best.rel.Assets, runtime.GOOS, runtime.GOARCH),
		Name:      best.rel.Name,
		RepoOwner: owner,
		RepoName:  name,
	}, nil
}

// pickAsset prefers an asset naming both goos and goarch, then one naming
// goos, then the first asset.
func pickAsset(assets []githubAsset, goos, goarch string) string {
	best, bestScore := "", -1
	for _, a := range assets {
		n := strings.ToLower(a.Name)
		score := 0
		if strings.Contains(n, goos) {
			score += 2
		}
		if strings.Contains(n, goarch) {
			score++
		}
		if score > bestScore {
			best, bestScore = a.BrowserDownloadURL, score
		}
	}
	return best
}

// CheckForUpdates compares the running Version against the latest release of
// repo and, after confirmation on in, replaces the executable.
func CheckForUpdates(repo string, in *bufio.Reader, out io.Writer) error {
	return checkForUpdates(githubAPI, repo, in, out, selfupdate.UpdateTo)
}

func checkForUpdates(apiBase, repo string, in *bufio.Reader, out io.Writer, apply func(assetURL, exe string) error) error {
	fmt.Fprintf(out, "Current version: %s\n", Version)
	latest, err := detectLatest(apiBase, repo)
	if err != nil {
		return fmt.Errorf("update check failed: %w", err)
	}
	if latest == nil {
		fmt.Fprintf(out, "No releases found for %s.\n", repo)
		return nil
	}
	fmt.Fprintf(out, "Latest version: %s\n", latest.Version)

	current, err := semver.ParseTolerant(Version)
	if err != nil {
		fmt.Fprintf(out, "warning: could not parse current version %q: %v\n", Version, err)
	} else if !latest.Version.GT(current) {
		fmt.Fprintf(out, "You are already running the latest version: %s.\n", current)
		return nil
	}

	if latest.AssetURL == "" {
		fmt.Fprintf(out, "A new version (%s) is available but there is no downloadable asset.\n", latest.Version)
		return nil
	}

	answer, err := promptLine(in, out, fmt.Sprintf("A new version (%s) is available. Update now? (y/N): ", latest.Version))
	if err != nil {
		return fmt.Errorf("failed reading input: %w", err)
	}
	answer = strings.ToLower(answer)
	if answer != "y" && answer != "yes" {
		fmt.Fprintln(out, "Update cancelled.")
		return nil
	}

	exe, err := os.Executable()
	if err != nil {
		return fmt.Errorf("could not locate executable: %w", err)
	}
	fmt.Fprintln(out, "Updating...")
	if err := apply(latest.AssetURL, exe); err != nil {
		return fmt.Errorf("update failed: %w", err)
	}
	fmt.Fprintf(out, "Updated to version %s. Restart kernelimg to use it.\n", latest.Version)
	return nil
}
