package status

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/git-pkgs/pkgversions/internal/core"
	"github.com/git-pkgs/pkgversions/internal/pypi"
	_ "github.com/git-pkgs/pkgversions/internal/requirements"
)

type recorder struct {
	messages []string
}

func (r *recorder) Log(msg string) {
	r.messages = append(r.messages, msg)
}

func (r *recorder) contains(substr string) bool {
	for _, m := range r.messages {
		if strings.Contains(m, substr) {
			return true
		}
	}
	return false
}

type sleepCounter struct {
	calls []int
}

func (s *sleepCounter) Sleep(_ context.Context, seconds int) error {
	s.calls = append(s.calls, seconds)
	return nil
}

func files(content string) core.FileReader {
	return core.FileReaderFunc(func(context.Context, string) (string, error) {
		return content, nil
	})
}

// feedGetter serves one release feed per package and counts every request.
type feedGetter struct {
	latest map[string]string
	calls  int
}

func (g *feedGetter) GetBody(_ context.Context, url string) ([]byte, error) {
	g.calls++
	for name, version := range g.latest {
		if strings.Contains(url, "/rss/project/"+name+"/") {
			return []byte(fmt.Sprintf(`<rss version="2.0"><channel><title>%s</title>
<item><title>2.0.0</title><pubDate>Sun, 01 Jan 2023 00:00:00 GMT</pubDate></item>
<item><title>%s</title><pubDate>Mon, 01 Jan 2024 00:00:00 GMT</pubDate></item>
</channel></rss>`, name, version)), nil
		}
	}
	return nil, fmt.Errorf("%s: not found", url)
}

func newChecker(content string, getter *feedGetter, logger core.Logger, sleeper core.Sleeper) *Checker {
	return NewChecker(Options{
		Loader:    core.NewLoader(files(content)),
		Timelines: pypi.New("https://pypi.test", getter),
		Logger:    logger,
		Sleeper:   sleeper,
	})
}

func TestCheckMatching(t *testing.T) {
	getter := &feedGetter{latest: map[string]string{"requests": "2.26.0"}}
	c := newChecker("requests >= 2.26.0\n", getter, core.NopLogger{}, &sleepCounter{})

	summary, err := c.Check(context.Background(), "/app/requirements.txt", 5)
	if err != nil {
		t.Fatalf("Check failed: %v", err)
	}

	if summary.TotalPackages != 1 || summary.MatchingCount != 1 || summary.MismatchingCount != 0 {
		t.Errorf("summary = %v", summary)
	}
	if summary.MatchingPercent != "100.00%" {
		t.Errorf("MatchingPercent = %q, want %q", summary.MatchingPercent, "100.00%")
	}
	if summary.MismatchingPercent != "0.00%" {
		t.Errorf("MismatchingPercent = %q, want %q", summary.MismatchingPercent, "0.00%")
	}

	detail := summary.Details[0]
	if !detail.IsVersionMatching {
		t.Error("IsVersionMatching = false, want true")
	}
	want := "The current version ('2.26.0') of 'requests' matches with the most recent release ('2.26.0', '2024-01-01')."
	if detail.Description != want {
		t.Errorf("Description = %q, want %q", detail.Description, want)
	}
}

func TestCheckMismatching(t *testing.T) {
	getter := &feedGetter{latest: map[string]string{"requests": "2.26.1"}}
	c := newChecker("requests >= 2.26.0\n", getter, core.NopLogger{}, &sleepCounter{})

	summary, err := c.Check(context.Background(), "/app/requirements.txt", 5)
	if err != nil {
		t.Fatalf("Check failed: %v", err)
	}

	if summary.Details[0].IsVersionMatching {
		t.Error("IsVersionMatching = true, want false")
	}
	if summary.MatchingPercent != "0.00%" {
		t.Errorf("MatchingPercent = %q, want %q", summary.MatchingPercent, "0.00%")
	}
	if summary.MismatchingPercent != "100.00%" {
		t.Errorf("MismatchingPercent = %q, want %q", summary.MismatchingPercent, "100.00%")
	}
	want := "The current version ('2.26.0') of 'requests' doesn't match with the most recent release ('2.26.1', '2024-01-01')."
	if summary.Details[0].Description != want {
		t.Errorf("Description = %q, want %q", summary.Details[0].Description, want)
	}
}

func TestCheckInvalidWaitTime(t *testing.T) {
	getter := &feedGetter{latest: map[string]string{"requests": "2.26.0"}}
	reads := 0
	c := NewChecker(Options{
		Loader: core.NewLoader(core.FileReaderFunc(func(context.Context, string) (string, error) {
			reads++
			return "requests==2.26.0", nil
		})),
		Timelines: pypi.New("", getter),
		Logger:    core.NopLogger{},
	})

	_, err := c.Check(context.Background(), "/app/requirements.txt", 2)

	var waitErr *core.InvalidWaitTimeError
	if !errors.As(err, &waitErr) {
		t.Fatalf("Check = %v, want InvalidWaitTimeError", err)
	}
	if err.Error() != "Waiting time ('2') can't be less than 5 seconds." {
		t.Errorf("message = %q", err.Error())
	}
	if getter.calls != 0 {
		t.Errorf("fetch calls = %d, want 0", getter.calls)
	}
	if reads != 0 {
		t.Errorf("file reads = %d, want 0", reads)
	}
}

func TestCheckCustomMinWaitTime(t *testing.T) {
	getter := &feedGetter{latest: map[string]string{"requests": "2.26.0"}}
	c := NewChecker(Options{
		Loader:      core.NewLoader(files("requests==2.26.0")),
		Timelines:   pypi.New("", getter),
		Logger:      core.NopLogger{},
		Sleeper:     &sleepCounter{},
		MinWaitTime: 1,
	})

	if _, err := c.Check(context.Background(), "requirements.txt", 1); err != nil {
		t.Errorf("Check failed: %v", err)
	}
}

func TestCheckSleepsBetweenPackages(t *testing.T) {
	getter := &feedGetter{latest: map[string]string{"requests": "2.26.0", "black": "24.1.0", "certifi": "2024.2.2"}}
	sleeper := &sleepCounter{}
	c := newChecker("requests==2.26.0\nblack==22.12.0\ncertifi==2024.2.2\n", getter, core.NopLogger{}, sleeper)

	summary, err := c.Check(context.Background(), "requirements.txt", 7)
	if err != nil {
		t.Fatalf("Check failed: %v", err)
	}

	if len(sleeper.calls) != 2 {
		t.Fatalf("sleep calls = %v, want 2", sleeper.calls)
	}
	for _, s := range sleeper.calls {
		if s != 7 {
			t.Errorf("slept %d seconds, want 7", s)
		}
	}
	if getter.calls != 3 {
		t.Errorf("fetch calls = %d, want 3", getter.calls)
	}

	names := []string{"requests", "black", "certifi"}
	for i, d := range summary.Details {
		if d.CurrentPackage.Name != names[i] {
			t.Errorf("Details[%d] = %s, want %s", i, d.CurrentPackage.Name, names[i])
		}
	}
	if summary.MatchingCount != 2 || summary.MismatchingCount != 1 {
		t.Errorf("counts = %d/%d, want 2/1", summary.MatchingCount, summary.MismatchingCount)
	}
	if summary.MatchingPercent != "66.67%" || summary.MismatchingPercent != "33.33%" {
		t.Errorf("percents = %s/%s, want 66.67%%/33.33%%", summary.MatchingPercent, summary.MismatchingPercent)
	}
}

func TestCheckFetchFailureAborts(t *testing.T) {
	getter := &feedGetter{latest: map[string]string{"requests": "2.26.0"}}
	sleeper := &sleepCounter{}
	c := newChecker("requests==2.26.0\nunknown==1.0\nblack==22.12.0\n", getter, core.NopLogger{}, sleeper)

	summary, err := c.Check(context.Background(), "requirements.txt", 5)
	if err == nil {
		t.Fatal("expected error")
	}
	if summary != nil {
		t.Errorf("summary = %v, want nil", summary)
	}
	if getter.calls != 2 {
		t.Errorf("fetch calls = %d, want 2", getter.calls)
	}
}

func TestCheckSleepCancelled(t *testing.T) {
	getter := &feedGetter{latest: map[string]string{"requests": "2.26.0", "black": "24.1.0"}}
	sleeper := core.SleeperFunc(func(context.Context, int) error {
		return context.Canceled
	})
	c := newChecker("requests==2.26.0\nblack==24.1.0\n", getter, core.NopLogger{}, sleeper)

	_, err := c.Check(context.Background(), "requirements.txt", 5)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Check = %v, want context.Canceled", err)
	}
}

func TestCheckLoadErrors(t *testing.T) {
	getter := &feedGetter{}

	_, err := newChecker("# nothing here\n", getter, core.NopLogger{}, nil).
		Check(context.Background(), "requirements.txt", 5)
	if !errors.Is(err, core.ErrNoPackagesFound) {
		t.Errorf("Check = %v, want ErrNoPackagesFound", err)
	}

	_, err = newChecker("requests==2.26.0", getter, core.NopLogger{}, nil).
		Check(context.Background(), "setup.cfg", 5)
	if !errors.Is(err, core.ErrNoLoadingStrategy) {
		t.Errorf("Check = %v, want ErrNoLoadingStrategy", err)
	}
	if getter.calls != 0 {
		t.Errorf("fetch calls = %d, want 0", getter.calls)
	}
}

func TestCheckLogs(t *testing.T) {
	getter := &feedGetter{latest: map[string]string{"requests": "2.26.0"}}
	logger := &recorder{}
	c := newChecker("requests==2.26.0\nnot a package\n", getter, logger, &sleepCounter{})

	if _, err := c.Check(context.Background(), "/app/requirements.txt", 5); err != nil {
		t.Fatalf("Check failed: %v", err)
	}

	want := []string{
		"The status checking operation has started!",
		"The list of local packages will be loaded from the following 'file_path': '/app/requirements.txt'.",
		"The 'waiting_time' between each fetching request will be: '5' seconds.",
		"'1' local packages has been found and successfully loaded.",
		"'1' unparsed lines.\nThese are: ['not a package']",
		"Now starting to evaluate the status of each local package...",
		"The total estimated time to complete the whole operation will be: '5' seconds.",
		"The status evaluation operation has been successfully completed.",
		"{ 'description': 'The current version ('2.26.0') of 'requests' matches with the most recent release ('2.26.0', '2024-01-01').' }",
		"Now starting the creation of a requirement summary...",
		"The requirement summary has been successfully created.",
		"{ 'total_packages': '1', 'matching': '1', 'matching_prc': '100.00%', 'mismatching': '0', 'mismatching_prc': '0.00%' }",
		"The status checking operation has been completed.",
	}
	if len(logger.messages) != len(want) {
		t.Fatalf("got %d messages, want %d:\n%s", len(logger.messages), len(want), strings.Join(logger.messages, "\n"))
	}
	for i := range want {
		if logger.messages[i] != want[i] {
			t.Errorf("messages[%d] = %q, want %q", i, logger.messages[i], want[i])
		}
	}
}

func TestTryCheck(t *testing.T) {
	getter := &feedGetter{latest: map[string]string{"requests": "2.26.0"}}
	logger := &recorder{}
	c := newChecker("requests==2.26.0", getter, logger, &sleepCounter{})

	if summary := c.TryCheck(context.Background(), "requirements.txt", 1); summary != nil {
		t.Errorf("TryCheck = %v, want nil", summary)
	}
	if !logger.contains("Waiting time ('1') can't be less than 5 seconds.") {
		t.Errorf("error message not logged: %q", logger.messages)
	}

	if summary := c.TryCheck(context.Background(), "requirements.txt", 5); summary == nil {
		t.Error("TryCheck = nil, want summary")
	}
}

func TestEvaluate(t *testing.T) {
	getter := &feedGetter{latest: map[string]string{"requests": "2.26.0"}}
	c := newChecker("requests==2.26.0", getter, core.NopLogger{}, &sleepCounter{})

	res := c.Evaluate(context.Background(), "requirements.txt", 5)
	if res.Err != nil || res.Summary == nil {
		t.Fatalf("Evaluate = %+v", res)
	}

	res = c.Evaluate(context.Background(), "README.md", 5)
	if res.Summary != nil || !errors.Is(res.Err, core.ErrNoLoadingStrategy) {
		t.Errorf("Evaluate = %+v, want ErrNoLoadingStrategy", res)
	}
}

func TestCheckPackages(t *testing.T) {
	getter := &feedGetter{latest: map[string]string{"numpy": "2.1.2"}}
	c := newChecker("", getter, core.NopLogger{}, &sleepCounter{})

	summary, err := c.CheckPackages(context.Background(), []core.DeclaredPackage{{Name: "numpy", Version: "2.1.2"}}, 5)
	if err != nil {
		t.Fatalf("CheckPackages failed: %v", err)
	}
	if summary.MatchingCount != 1 {
		t.Errorf("MatchingCount = %d, want 1", summary.MatchingCount)
	}

	_, err = c.CheckPackages(context.Background(), nil, 5)
	if !errors.Is(err, core.ErrNoPackagesFound) {
		t.Errorf("CheckPackages(nil) = %v, want ErrNoPackagesFound", err)
	}

	res := c.EvaluatePackages(context.Background(), nil, 3)
	if !errors.Is(res.Err, core.ErrInvalidWaitTime) {
		t.Errorf("EvaluatePackages = %v, want ErrInvalidWaitTime", res.Err)
	}
}

func TestCheckWithoutTimelines(t *testing.T) {
	c := NewChecker(Options{Loader: core.NewLoader(files("requests==1.0")), Logger: core.NopLogger{}})
	if _, err := c.Check(context.Background(), "requirements.txt", 5); err == nil {
		t.Error("expected error without a timeline fetcher")
	}
}

func TestLogSummary(t *testing.T) {
	logger := &recorder{}
	c := NewChecker(Options{Logger: logger})

	release := core.CanonicalRelease{PackageName: "black", Version: "24.1.0", PublishedAt: time.Date(2024, 1, 26, 0, 0, 0, 0, time.UTC)}
	summary := core.Summarize([]core.StatusDetail{
		Compare(core.DeclaredPackage{Name: "black", Version: "22.12.0"}, release),
	})
	c.LogSummary(&summary)

	if len(logger.messages) != 2 {
		t.Fatalf("messages = %q, want 2", logger.messages)
	}
	if !strings.HasPrefix(logger.messages[0], "{ 'total_packages': '1'") {
		t.Errorf("messages[0] = %q", logger.messages[0])
	}
	if !strings.Contains(logger.messages[1], "doesn't match with the most recent release ('24.1.0', '2024-01-26')") {
		t.Errorf("messages[1] = %q", logger.messages[1])
	}
}

func TestMsgUnparsedLines(t *testing.T) {
	if got := msgUnparsedLines(nil); got != "'0' unparsed lines." {
		t.Errorf("msgUnparsedLines(nil) = %q", got)
	}
	if got, want := msgUnparsedLines([]string{"a", "b"}), "'2' unparsed lines.\nThese are: ['a', 'b']"; got != want {
		t.Errorf("msgUnparsedLines = %q, want %q", got, want)
	}
}
