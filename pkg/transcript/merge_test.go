package transcript

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMerge(t *testing.T) {
	tests := []struct {
		name  string
		texts []string
		want  string
	}{
		{
			name: "empty input",
			want: "",
		},
		{
			name:  "only whitespace",
			texts: []string{"  ", "\n\t\n"},
			want:  "",
		},
		{
			name:  "single clean line",
			texts: []string{"سلام دنیا"},
			want:  "سلام دنیا",
		},
		{
			name:  "collapses whitespace and trims",
			texts: []string{"  first   part \t here  ", "\n\nsecond  part\n"},
			want:  "first part here\nsecond part",
		},
		{
			name:  "paragraph break before uppercase",
			texts: []string{"End of one.", "Start of two"},
			want:  "End of one.\n\nStart of two",
		},
		{
			name:  "no break before lowercase",
			texts: []string{"End of one.", "continues here"},
			want:  "End of one.\ncontinues here",
		},
		{
			name:  "no break without terminator",
			texts: []string{"no stop", "Capital"},
			want:  "no stop\nCapital",
		},
		{
			name:  "persian terminator before sentinel",
			texts: []string{"این پایان جمله است؟", Sentinel, "ادامه"},
			want:  "این پایان جمله است؟\n\n" + Sentinel + "\nادامه",
		},
		{
			name:  "persian comma before sentinel",
			texts: []string{"فهرست،", Sentinel},
			want:  "فهرست،\n\n" + Sentinel,
		},
		{
			name:  "persian text has no case so no break",
			texts: []string{"جمله اول.", "جمله دوم"},
			want:  "جمله اول.\nجمله دوم",
		},
		{
			name:  "exclamation then bracket",
			texts: []string{"wow!", "[music]"},
			want:  "wow!\n\n[music]",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Merge(tt.texts))
		})
	}
}

func TestMerge_PreservesOrder(t *testing.T) {
	texts := []string{"alpha", "beta", "gamma", "delta"}
	assert.Equal(t, "alpha\nbeta\ngamma\ndelta", Merge(texts))
}

func TestMerge_IdempotentOnCleanLines(t *testing.T) {
	clean := []string{"one line", "another line", "third"}
	once := Merge(clean)
	assert.Equal(t, strings.Join(clean, "\n"), once)
	assert.Equal(t, once, Merge([]string{once}))
}

func TestMerge_IdempotentWithParagraphBreaks(t *testing.T) {
	once := Merge([]string{"First.", "Second.", Sentinel})
	assert.Equal(t, once, Merge([]string{once}))
}

func TestMerge_SentinelPreserved(t *testing.T) {
	texts := []string{"a", Sentinel, "b", Sentinel}
	merged := Merge(texts)
	assert.Equal(t, 2, strings.Count(merged, Sentinel))
}

func TestCountFailed(t *testing.T) {
	assert.Equal(t, 0, CountFailed(nil))
	assert.Equal(t, 2, CountFailed([]string{Sentinel, "ok", "prefix " + Sentinel}))
	assert.True(t, IsFailed(Sentinel))
	assert.False(t, IsFailed("[SEGMENT OK]"))
}
