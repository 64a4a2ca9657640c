package status

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/klyro-io/klyro-cli/internal/application"
)

type RenderOptions struct {
	Now        time.Time
	StaleAfter time.Duration
}

func renderView(snap application.Snapshot, opts RenderOptions, s styles) string {
	lines := []string{
		s.title.Render("Klyro Status"),
		s.header.Render(fmt.Sprintf("authenticated: %s", yesNo(snap.Authenticated))),
	}

	if !snap.Authenticated {
		lines = append(lines, s.empty.Render("Not signed in. Run `klyro login` to get started."))
		return lipgloss.JoinVertical(lipgloss.Left, lines...)
	}

	lines = append(lines, s.section.Render(renderProject(snap, s)))

	if snap.ImpersonatedProjectID != "" {
		lines = append(lines, s.impersonate.Render(impersonationBanner(snap)))
	}

	lines = append(lines, s.section.Render(renderQueries(snap, opts, s)))

	if len(snap.Loading) > 0 {
		lines = append(lines, s.detail.Render(loadingLine(snap.Loading)))
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func renderProject(snap application.Snapshot, s styles) string {
	parts := []string{s.project.Render(projectTitle(snap))}

	count := "projects: loading"
	if snap.ProjectsLoaded {
		count = fmt.Sprintf("projects: %d", snap.ProjectCount)
	}
	parts = append(parts, s.detail.Render(count))

	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func projectTitle(snap application.Snapshot) string {
	if snap.SelectedProjectID == "" {
		return "No project selected"
	}
	name := strings.TrimSpace(snap.SelectedProjectName)
	if name == "" {
		return fmt.Sprintf("Project: %s", snap.SelectedProjectID)
	}
	return fmt.Sprintf("Project: %s (%s)", name, snap.SelectedProjectID)
}

func impersonationBanner(snap application.Snapshot) string {
	target := snap.ImpersonatedProjectName
	if target == "" {
		target = snap.ImpersonatedProjectID
	}
	if snap.ImpersonatedUserEmail != "" {
		return fmt.Sprintf("Impersonating %s as %s", target, snap.ImpersonatedUserEmail)
	}
	return fmt.Sprintf("Impersonating %s", target)
}

func renderQueries(snap application.Snapshot, opts RenderOptions, s styles) string {
	if len(snap.CachedQueries) == 0 {
		return s.empty.Render("No cached queries.")
	}

	features := make([]application.Feature, 0, len(snap.CachedQueries))
	for feature := range snap.CachedQueries {
		features = append(features, feature)
	}
	sort.Slice(features, func(i, j int) bool { return features[i] < features[j] })

	lines := make([]string, 0, len(features)+1)
	lines = append(lines, s.queryKey.Render("cached queries:"))
	for _, feature := range features {
		fetchedAt := snap.CachedQueries[feature]
		line := lipgloss.JoinHorizontal(
			lipgloss.Top,
			s.detail.Render(fmt.Sprintf("  %-12s", feature)),
			s.queryMeta.Render(formatAge(fetchedAt, opts.Now)),
		)
		if isStale(fetchedAt, opts) {
			line += " " + s.warning.Render("[stale]")
		}
		lines = append(lines, line)
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func loadingLine(features []application.Feature) string {
	names := make([]string, len(features))
	for i, feature := range features {
		names[i] = string(feature)
	}
	sort.Strings(names)
	return "loading: " + strings.Join(names, ", ")
}

func isStale(fetchedAt time.Time, opts RenderOptions) bool {
	if opts.Now.IsZero() || opts.StaleAfter <= 0 || fetchedAt.IsZero() {
		return false
	}
	return opts.Now.Sub(fetchedAt) >= opts.StaleAfter
}

func formatAge(fetchedAt, now time.Time) string {
	if fetchedAt.IsZero() {
		return "never"
	}
	if now.IsZero() {
		return fetchedAt.Format(time.RFC3339)
	}

	age := now.Sub(fetchedAt)
	switch {
	case age < time.Minute:
		return "just now"
	case age < time.Hour:
		minutes := int(math.Round(age.Minutes()))
		if minutes == 1 {
			return "1 minute ago"
		}
		return fmt.Sprintf("%d minutes ago", minutes)
	case age < 24*time.Hour:
		hours := int(math.Round(age.Hours()))
		if hours == 1 {
			return "1 hour ago"
		}
		return fmt.Sprintf("%d hours ago", hours)
	default:
		return fetchedAt.Format("15:04 on 02 Jan")
	}
}

func yesNo(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}
