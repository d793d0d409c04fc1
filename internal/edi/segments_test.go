// SPDX-License-Identifier: Apache-2.0

package edi_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edidecode/edi-mcp/internal/edi"
)

const isaHeader = "ISA*00*          *00*          *ZZ*SENDER         *ZZ*RECEIVER       *250115*1200*U*00401*000000001*0*P*<~"

func TestSplitSegments(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		sep  string
		want []string
	}{
		{
			name: "terminated segments",
			raw:  "ST*830*1~BFR*05~SE*2*1~",
			sep:  "~",
			want: []string{"ST*830*1", "BFR*05", "SE*2*1"},
		},
		{
			name: "line breaks after terminators",
			raw:  "UNH+1+DELFOR:D:96A:UN'\r\nBGM+241'\nUNT+2+1'\n",
			sep:  "'",
			want: []string{"UNH+1+DELFOR:D:96A:UN", "BGM+241", "UNT+2+1"},
		},
		{
			name: "empty input",
			raw:  "  \n",
			sep:  "~",
			want: []string{},
		},
		{
			name: "no separator",
			raw:  "ST*830",
			sep:  "",
			want: nil,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, edi.SplitSegments(tt.raw, tt.sep))
		})
	}
}

func TestSplitReleasedSegments(t *testing.T) {
	raw := "UNA:+.? 'FTX+AAI+IT?'S OK'BGM+241+DOC??'\n"
	assert.Equal(t,
		[]string{"UNA:+.?", "FTX+AAI+IT?'S OK", "BGM+241+DOC??"},
		edi.SplitReleasedSegments(raw, "'", "?"))
	assert.Equal(t,
		[]string{"FTX+AAI+IT?", "S OK"},
		edi.SplitReleasedSegments("FTX+AAI+IT?'S OK'", "'", ""))
}

func TestDetectX12Separators(t *testing.T) {
	require.Len(t, strings.TrimSuffix(isaHeader, "~"), 105)

	seps, ok := edi.DetectX12Separators("\ufeff\n" + isaHeader + "GS*PS~")
	require.True(t, ok)
	assert.Equal(t, edi.Separators{Element: "*", Segment: "~", Subelement: "<"}, seps)

	alt := strings.NewReplacer("*", "|", "<", ">", "~", "\n").Replace(isaHeader)
	seps, ok = edi.DetectX12Separators(alt)
	require.True(t, ok)
	assert.Equal(t, edi.Separators{Element: "|", Segment: "\n", Subelement: ">"}, seps)
}

func TestDetectX12Separators_NotISA(t *testing.T) {
	for _, raw := range []string{
		"",
		"UNB+UNOA:3+SENDER+RECEIVER'",
		isaHeader[:50],
	} {
		_, ok := edi.DetectX12Separators(raw)
		assert.False(t, ok, "input %q", raw)
	}
}

func TestDetectEDIFACTSeparators(t *testing.T) {
	seps, ok := edi.DetectEDIFACTSeparators("UNA:+.? 'UNB+UNOA:3'")
	require.True(t, ok)
	assert.Equal(t, edi.Separators{Element: "+", Segment: "'", Subelement: ":", Release: "?"}, seps)

	seps, ok = edi.DetectEDIFACTSeparators("UNA:+.  'UNB+UNOA:3'")
	require.True(t, ok)
	assert.Empty(t, seps.Release, "a blank release position means none")

	_, ok = edi.DetectEDIFACTSeparators("UNB+UNOA:3'")
	assert.False(t, ok)
}

func TestDetectDialect(t *testing.T) {
	tests := []struct {
		raw    string
		want   edi.Dialect
		wantOK bool
	}{
		{raw: isaHeader, want: edi.X12, wantOK: true},
		{raw: "\r\nUNB+UNOA:3'", want: edi.EDIFACT, wantOK: true},
		{raw: "UNA:+.? '", want: edi.EDIFACT, wantOK: true},
		{raw: "ST*830*1~"},
	}
	for _, tt := range tests {
		got, ok := edi.DetectDialect(tt.raw)
		assert.Equal(t, tt.wantOK, ok, tt.raw)
		assert.Equal(t, tt.want, got, tt.raw)
	}
}
