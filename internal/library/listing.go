package library

import (
	"context"
	"fmt"
	"os"
	"sort"

	"golang.org/x/sync/errgroup"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// listScanConcurrency bounds the per-project stat scans that run in parallel
// during a listing.
const listScanConcurrency = 8

// ListProjects enumerates the immediate subdirectories of the music root and
// orders them by descending latest-demo time, ties broken by ascending name
// under locale-aware collation. Per-project scans run concurrently and join
// before sorting. A project whose contents cannot be read is listed with no
// demos rather than aborting the listing.
func (l *Library) ListProjects(ctx context.Context) ([]Project, error) {
	entries, err := os.ReadDir(l.root)
	if err != nil {
		return nil, fmt.Errorf("read music root: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			names = append(names, entry.Name())
		}
	}

	projects := make([]Project, len(names))
	group, ctx := errgroup.WithContext(ctx)
	group.SetLimit(listScanConcurrency)
	for i, name := range names {
		i, name := i, name
		group.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			projects[i] = l.scanProject(name)
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}

	collator := collate.New(language.Und)
	sort.SliceStable(projects, func(i, j int) bool {
		if projects[i].LatestDemoModified != projects[j].LatestDemoModified {
			return projects[i].LatestDemoModified > projects[j].LatestDemoModified
		}
		return collator.CompareString(projects[i].Name, projects[j].Name) < 0
	})
	return projects, nil
}

// FreshestProject returns the project with the most recent demo, or false
// when the root holds no projects.
func (l *Library) FreshestProject(ctx context.Context) (Project, bool, error) {
	projects, err := l.ListProjects(ctx)
	if err != nil {
		return Project{}, false, err
	}
	if len(projects) == 0 {
		return Project{}, false, nil
	}
	return projects[0], true, nil
}
