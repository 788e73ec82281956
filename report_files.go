package storyrunner

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"html/template"
	"io"
	"path"

	"github.com/pkg/errors"
	"github.com/spf13/afero"
)

type storyRecord struct {
	Path      string
	Scenarios []*scenarioRecord
}

type scenarioRecord struct {
	Title  string
	Status Status
	Steps  []StepOutcome
}

// fileReporter collects a story and renders it into a file at AfterStory.
type fileReporter struct {
	fs     afero.Fs
	file   string
	render func(io.Writer, *storyRecord) error
	story  storyRecord
}

func (fr *fileReporter) current() *scenarioRecord {
	if len(fr.story.Scenarios) == 0 {
		fr.story.Scenarios = append(fr.story.Scenarios, &scenarioRecord{})
	}
	return fr.story.Scenarios[len(fr.story.Scenarios)-1]
}

func (fr *fileReporter) BeforeStory(path string) {
	fr.story = storyRecord{Path: path}
}

func (fr *fileReporter) BeforeScenario(title string) {
	fr.story.Scenarios = append(fr.story.Scenarios, &scenarioRecord{Title: title})
}

func (fr *fileReporter) Step(o StepOutcome) {
	sc := fr.current()
	sc.Steps = append(sc.Steps, o)
}

func (fr *fileReporter) AfterScenario(status Status) {
	fr.current().Status = status
}

func (fr *fileReporter) AfterStory() error {
	var buf bytes.Buffer
	if err := fr.render(&buf, &fr.story); err != nil {
		return errors.Wrapf(err, "render %s", fr.file)
	}

	if err := fr.fs.MkdirAll(path.Dir(fr.file), 0o755); err != nil {
		return errors.Wrapf(err, "create report directory for %s", fr.file)
	}
	if err := afero.WriteFile(fr.fs, fr.file, buf.Bytes(), 0o644); err != nil {
		return errors.Wrapf(err, "write %s", fr.file)
	}
	return nil
}

func newTextReporter(fs afero.Fs, file string) StoryReporter {
	return &fileReporter{fs: fs, file: file, render: renderText}
}

func renderText(w io.Writer, s *storyRecord) error {
	fmt.Fprintf(w, "Story: %s\n", s.Path)
	for _, sc := range s.Scenarios {
		fmt.Fprintf(w, "\nScenario: %s\n", sc.Title)
		for _, st := range sc.Steps {
			if st.Status == StatusPassed {
				fmt.Fprintf(w, "%s\n", st.Text)
			} else {
				fmt.Fprintf(w, "%s (%s)\n", st.Text, st.Status)
			}
			if st.Error != "" {
				fmt.Fprintf(w, "  %s\n", st.Error)
			}
		}
	}
	return nil
}

var htmlReport = template.Must(template.New("story").Parse(`<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>{{.Path}}</title></head>
<body>
<div class="story"><h1>Story: {{.Path}}</h1>
{{range .Scenarios}}<div class="scenario {{.Status}}"><h2>Scenario: {{.Title}}</h2>
{{range .Steps}}<div class="step {{.Status}}">{{.Text}}{{if .Error}} <pre class="failure">{{.Error}}</pre>{{end}}</div>
{{end}}</div>
{{end}}</div>
</body>
</html>
`))

func newHTMLReporter(fs afero.Fs, file string) StoryReporter {
	return &fileReporter{fs: fs, file: file, render: func(w io.Writer, s *storyRecord) error {
		return htmlReport.Execute(w, s)
	}}
}

type xmlStory struct {
	XMLName   xml.Name      `xml:"story"`
	Path      string        `xml:"path,attr"`
	Scenarios []xmlScenario `xml:"scenario"`
}

type xmlScenario struct {
	Title  string    `xml:"title,attr"`
	Status string    `xml:"outcome,attr"`
	Steps  []xmlStep `xml:"step"`
}

type xmlStep struct {
	Status  string `xml:"outcome,attr"`
	Text    string `xml:",chardata"`
	Failure string `xml:"failure,omitempty"`
}

func newXMLReporter(fs afero.Fs, file string) StoryReporter {
	return &fileReporter{fs: fs, file: file, render: renderXML}
}

func renderXML(w io.Writer, s *storyRecord) error {
	doc := xmlStory{Path: s.Path}
	for _, sc := range s.Scenarios {
		xs := xmlScenario{Title: sc.Title, Status: sc.Status.String()}
		for _, st := range sc.Steps {
			xs.Steps = append(xs.Steps, xmlStep{Status: st.Status.String(), Text: st.Text, Failure: st.Error})
		}
		doc.Scenarios = append(doc.Scenarios, xs)
	}

	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	return enc.Encode(doc)
}

func newStatsReporter(fs afero.Fs, file string) StoryReporter {
	return &fileReporter{fs: fs, file: file, render: renderStats}
}

func renderStats(w io.Writer, s *storyRecord) error {
	counts := map[Status]int{}
	steps := 0
	failed := 0
	for _, sc := range s.Scenarios {
		if sc.Status != StatusPassed && sc.Status != StatusSkipped {
			failed++
		}
		for _, st := range sc.Steps {
			counts[st.Status]++
			steps++
		}
	}

	fmt.Fprintf(w, "scenarios=%d\n", len(s.Scenarios))
	fmt.Fprintf(w, "scenariosFailed=%d\n", failed)
	fmt.Fprintf(w, "steps=%d\n", steps)
	for _, st := range []Status{StatusPassed, StatusFailed, StatusPending, StatusUndefined, StatusSkipped, StatusAmbiguous} {
		fmt.Fprintf(w, "steps.%s=%d\n", st, counts[st])
	}
	return nil
}
