package export

import (
	"fmt"
	"strings"

	"github.com/gomutex/godocx"
	"github.com/gomutex/godocx/docx"

	"github.com/medscribe/visitflow/internal/summary"
)

const (
	fontName = "Times New Roman"
	fontSize = 13
)

// WriteDocx renders a structured visit summary to a docx file. The layout
// follows the schema: narrative first, then one section per populated list.
func WriteDocx(s summary.Structured, outputPath string) error {
	doc, err := godocx.NewDocument()
	if err != nil {
		return err
	}

	title := s.SummaryTitle()
	if title == "" {
		title = "Visit Summary"
	}
	addStyledRun(doc.AddParagraph(""), title, true, 16)
	doc.AddParagraph("")

	switch v := s.(type) {
	case *summary.SummaryV12:
		renderV12(doc, v)
	case *summary.SummaryV13:
		renderV13(doc, v)
	default:
		return fmt.Errorf("unsupported summary type %T", s)
	}

	return doc.SaveTo(outputPath)
}

func renderV12(doc *docx.RootDoc, s *summary.SummaryV12) {
	addBody(doc, s.Summary)

	if len(s.ReasonForVisit) > 0 {
		addHeading(doc, "Reason for Visit")
		for _, r := range s.ReasonForVisit {
			addBullet(doc, r.Reason, r.Description)
		}
	}
	renderDiagnosis(doc, s.Diagnosis)

	if len(s.Todos) > 0 {
		addHeading(doc, "Recommendations")
		for _, todo := range s.Todos {
			detail := todo.Description
			if todo.Dosage != "" {
				detail += " (" + medicationLine(todo.Dosage, todo.Frequency, todo.Timing, todo.Duration) + ")"
			}
			addBullet(doc, todo.Title, detail)
		}
	}
	renderFollowUp(doc, s.FollowUp)

	if len(s.Learnings) > 0 {
		addHeading(doc, "What You Learned")
		for _, l := range s.Learnings {
			addBullet(doc, l.Title, l.Description)
		}
	}
}

func renderV13(doc *docx.RootDoc, s *summary.SummaryV13) {
	addBody(doc, s.Summary)

	if len(s.ReasonForVisit) > 0 {
		addHeading(doc, "Reason for Visit")
		for _, r := range s.ReasonForVisit {
			addBullet(doc, r.Reason, r.Description)
		}
	}
	renderDiagnosis(doc, s.Diagnosis)

	if len(s.Tests) > 0 {
		addHeading(doc, "Tests")
		for _, t := range s.Tests {
			addBullet(doc, t.Title, t.Description)
		}
	}
	if len(s.Medications) > 0 {
		addHeading(doc, "Medications")
		for _, m := range s.Medications {
			addBullet(doc, m.Title, medicationLine(m.Dosage, m.Frequency, m.Timing, m.Duration))
		}
	}
	if len(s.Procedures) > 0 {
		addHeading(doc, "Procedures")
		for _, p := range s.Procedures {
			addBullet(doc, p.Title, p.Description)
		}
	}
	if len(s.Other) > 0 {
		addHeading(doc, "Other Recommendations")
		for _, o := range s.Other {
			addBullet(doc, o.Title, o.Description)
		}
	}
	renderFollowUp(doc, s.FollowUp)

	if s.WhyRecommended != "" {
		addHeading(doc, "Why This Plan")
		addBody(doc, s.WhyRecommended)
	}
	if len(s.RisksSideEffects) > 0 {
		addHeading(doc, "Risks and Side Effects")
		for _, r := range s.RisksSideEffects {
			addBullet(doc, r.Title, r.Description)
		}
	}
	if len(s.ActionTodo) > 0 {
		addHeading(doc, "Action Items")
		for _, a := range s.ActionTodo {
			addBullet(doc, a.Title, "")
		}
	}
}

func renderDiagnosis(doc *docx.RootDoc, d *summary.Diagnosis) {
	if d == nil || len(d.Details) == 0 {
		return
	}
	addHeading(doc, "Diagnosis")
	for _, det := range d.Details {
		detail := det.Description
		if det.Severity != "" {
			detail += " (severity: " + det.Severity + ")"
		}
		addBullet(doc, det.Title, detail)
	}
}

func renderFollowUp(doc *docx.RootDoc, items []summary.FollowUp) {
	if len(items) == 0 {
		return
	}
	addHeading(doc, "Follow-up")
	for _, f := range items {
		addBullet(doc, f.Description, f.TimeFrame)
	}
}

func medicationLine(dosage, frequency, timing, duration string) string {
	var parts []string
	for _, p := range []string{dosage, frequency, timing, duration} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}

func addHeading(doc *docx.RootDoc, text string) {
	doc.AddParagraph("")
	addStyledRun(doc.AddParagraph(""), text, true, 15)
}

func addBody(doc *docx.RootDoc, text string) {
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		addStyledRun(doc.AddParagraph(""), line, false, fontSize)
	}
}

func addBullet(doc *docx.RootDoc, title, detail string) {
	p := doc.AddParagraph("")
	run := p.AddText("• " + title).Font(fontName).Size(fontSize).Color("000000")
	if detail != "" {
		run.Bold(true)
		p.AddText(": " + detail).Font(fontName).Size(fontSize).Color("000000")
	}
}

func addStyledRun(p *docx.Paragraph, text string, bold bool, size uint64) {
	run := p.AddText(text).Font(fontName).Size(size).Color("000000")
	if bold {
		run.Bold(true)
	}
}
