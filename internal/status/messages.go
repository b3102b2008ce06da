package status

import (
	"fmt"
	"strings"

	"github.com/git-pkgs/pkgversions/internal/core"
)

func msgStarted() string {
	return "The status checking operation has started!"
}

func msgLoadingFrom(path string) string {
	return fmt.Sprintf("The list of local packages will be loaded from the following 'file_path': '%s'.", path)
}

func msgWaitingTime(waitingTime int) string {
	return fmt.Sprintf("The 'waiting_time' between each fetching request will be: '%d' seconds.", waitingTime)
}

func msgPackagesLoaded(count int) string {
	return fmt.Sprintf("'%d' local packages has been found and successfully loaded.", count)
}

func msgUnparsedLines(lines []string) string {
	msg := fmt.Sprintf("'%d' unparsed lines.", len(lines))
	if len(lines) > 0 {
		quoted := make([]string, len(lines))
		for i, l := range lines {
			quoted[i] = "'" + l + "'"
		}
		msg += "\nThese are: [" + strings.Join(quoted, ", ") + "]"
	}
	return msg
}

func msgEvaluationStarted() string {
	return "Now starting to evaluate the status of each local package..."
}

func msgEstimatedTime(waitingTime, packages int) string {
	return fmt.Sprintf("The total estimated time to complete the whole operation will be: '%d' seconds.", waitingTime*packages)
}

func msgEvaluationCompleted() string {
	return "The status evaluation operation has been successfully completed."
}

func msgSummaryStarted() string {
	return "Now starting the creation of a requirement summary..."
}

func msgSummaryCreated() string {
	return "The requirement summary has been successfully created."
}

func msgCompleted() string {
	return "The status checking operation has been completed."
}

// Describe renders the outcome of comparing pkg with release.
func Describe(pkg core.DeclaredPackage, release core.CanonicalRelease, matching bool) string {
	verb := "matches"
	if !matching {
		verb = "doesn't match"
	}
	return fmt.Sprintf("The current version ('%s') of '%s' %s with the most recent release ('%s', '%s').",
		pkg.Version, pkg.Name, verb, release.Version, release.PublishedAt.Format(core.DateLayout))
}
