package classify

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/lexandro/useclient-mcp/language"
)

func newDefaultClassifier(t *testing.T) *Classifier {
	t.Helper()
	c, err := New(Options{
		Marker:       DefaultMarker,
		MarkerWindow: DefaultMarkerWindow,
		Signatures:   DefaultSignatures,
	})
	if err != nil {
		t.Fatalf("failed to create classifier: %v", err)
	}
	return c
}

func Test_Classify_SignatureWithoutMarker(t *testing.T) {
	c := newDefaultClassifier(t)

	result := c.Classify("export default () => <div>{useState(0)}</div>")

	if result.Verdict != NeedsMarker {
		t.Fatalf("expected NeedsMarker, got %s", result.Verdict)
	}
	if result.Signature != "useState" {
		t.Errorf("expected signature useState, got %q", result.Signature)
	}
	if result.Line != 1 {
		t.Errorf("expected line 1, got %d", result.Line)
	}
}

func Test_Classify_MarkerShortCircuits(t *testing.T) {
	c := newDefaultClassifier(t)

	content := "\"use client\"\nexport default function B(){ const [s,set]=useState(0)}"
	result := c.Classify(content)

	if result.Verdict != Marked {
		t.Fatalf("expected Marked, got %s", result.Verdict)
	}
	if result.Signature != "" {
		t.Errorf("expected no signature for marked file, got %q", result.Signature)
	}
}

func Test_Classify_MarkerWithEverySignature(t *testing.T) {
	c := newDefaultClassifier(t)

	content := "'use client';\n" + strings.Join(DefaultSignatures, "\n")
	if got := c.Classify(content).Verdict; got != Marked {
		t.Errorf("expected Marked, got %s", got)
	}
}

func Test_Classify_NoSignature(t *testing.T) {
	c := newDefaultClassifier(t)

	if got := c.Classify("export const x = 1;").Verdict; got != Clean {
		t.Errorf("expected Clean, got %s", got)
	}
}

func Test_Classify_CommentCountsAsUsage(t *testing.T) {
	c := newDefaultClassifier(t)

	result := c.Classify("// TODO: add useContext later\nexport default function F() { return null }\n")
	if result.Verdict != NeedsMarker {
		t.Fatalf("expected NeedsMarker for comment match, got %s", result.Verdict)
	}
	if result.Signature != "useContext" {
		t.Errorf("expected useContext, got %q", result.Signature)
	}
}

func Test_Classify_IdentifierContainingSignature(t *testing.T) {
	c := newDefaultClassifier(t)

	result := c.Classify("const handleonClickthrough = 1;\n")
	if result.Verdict != NeedsMarker {
		t.Errorf("expected substring match inside identifier, got %s", result.Verdict)
	}
}

func Test_Classify_FirstSignatureInSetOrder(t *testing.T) {
	c := newDefaultClassifier(t)

	// onClick appears first in the text but useEffect comes first in the set.
	content := "<button onClick={go} />\n\nuseEffect(() => {}, [])\n"
	result := c.Classify(content)

	if result.Signature != "useEffect" {
		t.Errorf("expected useEffect (set order), got %q", result.Signature)
	}
	if result.Line != 3 {
		t.Errorf("expected line 3, got %d", result.Line)
	}
}

func Test_Classify_MarkerOutsideWindow(t *testing.T) {
	c := newDefaultClassifier(t)

	content := strings.Repeat("/* header */\n", 50) + "'use client'\nuseRef()\n"
	if len(content[:strings.Index(content, "use client")]) < DefaultMarkerWindow {
		t.Fatal("fixture must place marker past the window")
	}

	if got := c.Classify(content).Verdict; got != NeedsMarker {
		t.Errorf("expected NeedsMarker when marker is past the window, got %s", got)
	}
}

func Test_Classify_MarkerStraddlingWindow(t *testing.T) {
	c, err := New(Options{Marker: "use client", MarkerWindow: 10, Signatures: []string{"useState"}})
	if err != nil {
		t.Fatal(err)
	}

	// "use client" starts at character 5 and ends at 15, past the 10-char window.
	content := "abcd use client\nuseState()"
	if c.HasMarker(content) {
		t.Error("expected marker straddling the window to be missed")
	}
	if got := c.Classify(content).Verdict; got != NeedsMarker {
		t.Errorf("expected NeedsMarker, got %s", got)
	}
}

func Test_Classify_WindowCountsCharactersNotBytes(t *testing.T) {
	c, err := New(Options{Marker: "use client", MarkerWindow: 12, Signatures: []string{"useState"}})
	if err != nil {
		t.Fatal(err)
	}

	// Two multi-byte runes precede the marker: 2 + 10 = 12 characters, but 16 bytes.
	content := "éé" + "use client" + "\nuseState()"
	if !c.HasMarker(content) {
		t.Error("expected marker within a 12-character window")
	}
}

func Test_Classify_ShortContentUsesWholeWindow(t *testing.T) {
	c := newDefaultClassifier(t)

	if !c.HasMarker("use client") {
		t.Error("expected marker in content shorter than the window")
	}
	if c.HasMarker("") {
		t.Error("expected no marker in empty content")
	}
}

func Test_Classify_CustomSignaturesAreRegexps(t *testing.T) {
	c, err := New(Options{
		Marker:       DefaultMarker,
		MarkerWindow: DefaultMarkerWindow,
		Signatures:   []string{`window\.localStorage`, `\buseSWR\b`},
	})
	if err != nil {
		t.Fatal(err)
	}

	if got := c.Classify("const v = window.localStorage.getItem('k')").Signature; got != `window\.localStorage` {
		t.Errorf("expected localStorage signature, got %q", got)
	}
	if got := c.Classify("useSWRConfig()").Verdict; got != Clean {
		t.Errorf("expected word boundary to reject useSWRConfig, got %s", got)
	}
	if got := c.Classify("useState()").Verdict; got != Clean {
		t.Errorf("expected defaults to be replaced, got %s", got)
	}
}

func Test_Classify_CustomMarker(t *testing.T) {
	c, err := New(Options{Marker: "use server", MarkerWindow: 100, Signatures: DefaultSignatures})
	if err != nil {
		t.Fatal(err)
	}

	if got := c.Classify("'use client'\nuseState()").Verdict; got != NeedsMarker {
		t.Errorf("expected default marker to be ignored, got %s", got)
	}
	if got := c.Classify("'use server'\nuseState()").Verdict; got != Marked {
		t.Errorf("expected custom marker to be honored, got %s", got)
	}
}

func Test_New_InvalidOptions(t *testing.T) {
	tests := []struct {
		name    string
		options Options
	}{
		{"empty marker", Options{Marker: "", MarkerWindow: 500, Signatures: DefaultSignatures}},
		{"zero window", Options{Marker: "use client", MarkerWindow: 0, Signatures: DefaultSignatures}},
		{"no signatures", Options{Marker: "use client", MarkerWindow: 500}},
		{"empty signature", Options{Marker: "use client", MarkerWindow: 500, Signatures: []string{""}}},
		{"bad regexp", Options{Marker: "use client", MarkerWindow: 500, Signatures: []string{"use(State"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := New(tt.options); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}

func Test_Signatures_PreservesOrder(t *testing.T) {
	c := newDefaultClassifier(t)

	got := c.Signatures()
	if len(got) != len(DefaultSignatures) {
		t.Fatalf("expected %d signatures, got %d", len(DefaultSignatures), len(got))
	}
	for i := range got {
		if got[i] != DefaultSignatures[i] {
			t.Errorf("signature[%d] = %q, want %q", i, got[i], DefaultSignatures[i])
		}
	}
}

func Test_ReadFile_ReadsFromDisk(t *testing.T) {
	c := newDefaultClassifier(t)
	tmpDir := t.TempDir()

	path := filepath.Join(tmpDir, "a.tsx")
	os.WriteFile(path, []byte("export default () => <div>{useState(0)}</div>"), 0644)

	content, info, err := c.ReadFile(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if info.Size() != int64(len(content)) {
		t.Errorf("expected size %d, got %d", len(content), info.Size())
	}
	if result := c.Classify(content); !result.NeedsMarker() {
		t.Errorf("expected finding, got %s", result.Verdict)
	}
}

func Test_ReadFile_MissingFile(t *testing.T) {
	c := newDefaultClassifier(t)

	_, _, err := c.ReadFile(filepath.Join(t.TempDir(), "gone.tsx"))
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected ErrNotExist, got %v", err)
	}
}

func Test_ReadFile_NotText(t *testing.T) {
	c := newDefaultClassifier(t)
	path := filepath.Join(t.TempDir(), "bad.ts")
	os.WriteFile(path, []byte{'u', 's', 'e', 0xff, 0xfe}, 0644)

	_, _, err := c.ReadFile(path)
	if !errors.Is(err, language.ErrNotText) {
		t.Errorf("expected ErrNotText, got %v", err)
	}
}

func Test_ReadFile_TooLarge(t *testing.T) {
	c, err := New(Options{
		Marker:       DefaultMarker,
		MarkerWindow: DefaultMarkerWindow,
		Signatures:   DefaultSignatures,
		MaxFileSize:  16,
	})
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "big.ts")
	os.WriteFile(path, []byte(strings.Repeat("x", 17)), 0644)

	_, _, err = c.ReadFile(path)
	if !errors.Is(err, ErrFileTooLarge) {
		t.Errorf("expected ErrFileTooLarge, got %v", err)
	}
}

func Test_ReadFile_NoLimitByDefault(t *testing.T) {
	c := newDefaultClassifier(t)
	path := filepath.Join(t.TempDir(), "bundle.js")
	os.WriteFile(path, []byte("onClick\n"+strings.Repeat("x", 2<<20)), 0644)

	content, _, err := c.ReadFile(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	result := c.Classify(content)
	if !result.NeedsMarker() || result.Signature != "onClick" {
		t.Errorf("expected onClick finding, got %+v", result)
	}
}

func Test_New_RejectsNegativeMaxFileSize(t *testing.T) {
	_, err := New(Options{
		Marker:       DefaultMarker,
		MarkerWindow: DefaultMarkerWindow,
		Signatures:   DefaultSignatures,
		MaxFileSize:  -1,
	})
	if err == nil {
		t.Error("expected an error for a negative max file size")
	}
}

func Test_Verdict_String(t *testing.T) {
	tests := []struct {
		verdict Verdict
		want    string
	}{
		{Clean, "clean"},
		{Marked, "marked"},
		{NeedsMarker, "needs-marker"},
		{Verdict(42), "Verdict(42)"},
	}
	for _, tt := range tests {
		if got := tt.verdict.String(); got != tt.want {
			t.Errorf("Verdict(%d).String() = %q, want %q", int(tt.verdict), got, tt.want)
		}
	}
}
