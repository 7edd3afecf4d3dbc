package diagnostic

import (
	"encoding/json"
	"fmt"
	"strings"

	"gitlab.com/tozd/go/errors"
)

// Formatter formats diagnostics into different output formats
type Formatter interface {
	// Format formats diagnostics into a specific output format
	Format(diagnostics *Collection) ([]byte, error)
}

// VSCodeFormatter formats diagnostics into VSCode-compatible format
type VSCodeFormatter struct{}

func NewVSCodeFormatter() *VSCodeFormatter {
	return &VSCodeFormatter{}
}

// Format implements Formatter
func (f *VSCodeFormatter) Format(diagnostics *Collection) ([]byte, error) {
	if diagnostics == nil {
		return nil, errors.Errorf("diagnostics is nil")
	}

	// VSCode expects diagnostics in this format:
	// {
	//   "severity": 1, // Error = 1, Warning = 2, Information = 3
	//   "message": "message text",
	//   "range": {
	//     "start": { "line": 1, "character": 1 },
	//     "end": { "line": 1, "character": 1 }
	//   }
	// }

	type VSCodePlace struct {
		Line      int `json:"line"`
		Character int `json:"character"`
	}

	type VSCodeRange struct {
		Start VSCodePlace `json:"start"`
		End   VSCodePlace `json:"end"`
	}

	type VSCodeDiagnostic struct {
		Severity int         `json:"severity"`
		Code     string      `json:"code"`
		Source   string      `json:"source"`
		Message  string      `json:"message"`
		Range    VSCodeRange `json:"range"`
	}

	result := make([]VSCodeDiagnostic, 0, diagnostics.Len())
	for _, d := range diagnostics.Items() {
		severity := 3 // Information
		switch d.Severity {
		case Error:
			severity = 1
		case Warning:
			severity = 2
		}
		result = append(result, VSCodeDiagnostic{
			Severity: severity,
			Code:     d.Code,
			Source:   "razr",
			Message:  d.Message,
			Range: VSCodeRange{
				Start: VSCodePlace{Line: d.Range.Start.Line, Character: d.Range.Start.Character},
				End:   VSCodePlace{Line: d.Range.End.Line, Character: d.Range.End.Character},
			},
		})
	}

	return json.Marshal(result)
}

// TextFormatter renders diagnostics one per line in the classic
// file:line:col form. Line and column are printed 1-based.
type TextFormatter struct{}

func NewTextFormatter() *TextFormatter {
	return &TextFormatter{}
}

// Format implements Formatter
func (f *TextFormatter) Format(diagnostics *Collection) ([]byte, error) {
	if diagnostics == nil {
		return nil, errors.Errorf("diagnostics is nil")
	}

	var sb strings.Builder
	for _, d := range diagnostics.Items() {
		fmt.Fprintf(&sb, "%s:%d:%d: %s: %s [%s]\n",
			d.File,
			d.Range.Start.Line+1,
			d.Range.Start.Character+1,
			d.Severity,
			d.Message,
			d.Code,
		)
	}
	return []byte(sb.String()), nil
}
