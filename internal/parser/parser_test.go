package parser

import (
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fping-influx/internal/models"
)

const twoTargetReport = `10.0.0.1 : xmt/rcv/%loss = 10/10/0%, min/avg/max = 0.12/0.45/1.02
10.0.0.2 : xmt/rcv/%loss = 10/0/100%
`

func TestParseTwoTargets(t *testing.T) {
	report, err := Parse(strings.NewReader(twoTargetReport))
	require.NoError(t, err)

	assert.Equal(t, models.Report{
		"10.0.0.1": {Target: "10.0.0.1", Transmitted: 10, Received: 10, LossPercent: 0, MinMs: 0.12, AvgMs: 0.45, MaxMs: 1.02},
		"10.0.0.2": {Target: "10.0.0.2", Transmitted: 10, Received: 0, LossPercent: 100},
	}, report)
}

func TestParseLine(t *testing.T) {
	tests := []struct {
		name     string
		line     string
		expected models.TargetStats
	}{
		{
			name:     "loss only",
			line:     "10.0.0.1 : xmt/rcv/%loss = 10/0/100%",
			expected: models.TargetStats{Target: "10.0.0.1", Transmitted: 10, Received: 0, LossPercent: 100},
		},
		{
			name: "with timings",
			line: "10.0.0.1 : xmt/rcv/%loss = 100/98/2%, min/avg/max = 0.31/0.52/3.87",
			expected: models.TargetStats{
				Target: "10.0.0.1", Transmitted: 100, Received: 98, LossPercent: 2,
				MinMs: 0.31, AvgMs: 0.52, MaxMs: 3.87,
			},
		},
		{
			name:     "padded label",
			line:     "10.0.0.1     : xmt/rcv/%loss = 5/5/0%, min/avg/max = 1/2/3",
			expected: models.TargetStats{Target: "10.0.0.1", Transmitted: 5, Received: 5, MinMs: 1, AvgMs: 2, MaxMs: 3},
		},
		{
			name:     "hostname target",
			line:     "gw.example.net : xmt/rcv/%loss = 3/3/0%, min/avg/max = 0.05/0.06/0.07",
			expected: models.TargetStats{Target: "gw.example.net", Transmitted: 3, Received: 3, MinMs: 0.05, AvgMs: 0.06, MaxMs: 0.07},
		},
		{
			name:     "ipv6 target",
			line:     "fe80::1 : xmt/rcv/%loss = 4/4/0%, min/avg/max = 0.01/0.02/0.03",
			expected: models.TargetStats{Target: "fe80::1", Transmitted: 4, Received: 4, MinMs: 0.01, AvgMs: 0.02, MaxMs: 0.03},
		},
		{
			name:     "no space before colon",
			line:     "10.0.0.9: xmt/rcv/%loss = 2/1/50%, min/avg/max = 0.4/0.4/0.4",
			expected: models.TargetStats{Target: "10.0.0.9", Transmitted: 2, Received: 1, LossPercent: 50, MinMs: 0.4, AvgMs: 0.4, MaxMs: 0.4},
		},
		{
			name:     "never transmitted",
			line:     "10.0.0.3 : xmt/rcv/%loss = 0/0/0%",
			expected: models.TargetStats{Target: "10.0.0.3"},
		},
		{
			name:     "outage segment ignored",
			line:     "10.0.0.4 : xmt/rcv/%loss = 10/9/10%, outage(ms) = 100, min/avg/max = 0.2/0.3/0.4",
			expected: models.TargetStats{Target: "10.0.0.4", Transmitted: 10, Received: 9, LossPercent: 10, MinMs: 0.2, AvgMs: 0.3, MaxMs: 0.4},
		},
		{
			name:     "outage on lost target",
			line:     "10.0.0.6 : xmt/rcv/%loss = 10/0/100%, outage(ms) = 1000",
			expected: models.TargetStats{Target: "10.0.0.6", Transmitted: 10, LossPercent: 100},
		},
		{
			name:     "trailing carriage return",
			line:     "10.0.0.5 : xmt/rcv/%loss = 1/1/0%, min/avg/max = 0.5/0.5/0.5\r",
			expected: models.TargetStats{Target: "10.0.0.5", Transmitted: 1, Received: 1, MinMs: 0.5, AvgMs: 0.5, MaxMs: 0.5},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			report, err := ParseLines([]string{tt.line})
			require.NoError(t, err)
			require.Len(t, report, 1)
			assert.Equal(t, tt.expected, report[tt.expected.Target])
		})
	}
}

func TestParseMalformedLines(t *testing.T) {
	tests := []struct {
		name string
		line string
	}{
		{name: "no colon no equals", line: "hostA BAD_LINE"},
		{name: "no equals", line: "10.0.0.1 : 10/10/0%"},
		{name: "empty target", line: " : xmt/rcv/%loss = 10/10/0%"},
		{name: "two counts", line: "10.0.0.1 : xmt/rcv/%loss = 10/10"},
		{name: "four counts", line: "10.0.0.1 : xmt/rcv/%loss = 10/10/0%/1"},
		{name: "non numeric count", line: "10.0.0.1 : xmt/rcv/%loss = a/10/0%"},
		{name: "negative count", line: "10.0.0.1 : xmt/rcv/%loss = -1/0/0%"},
		{name: "loss above 100", line: "10.0.0.1 : xmt/rcv/%loss = 10/10/101%"},
		{name: "float count", line: "10.0.0.1 : xmt/rcv/%loss = 10.5/10/0%"},
		{name: "wrong first segment", line: "10.0.0.1 : min/avg/max = 1/2/3"},
		{name: "timing not a number", line: "10.0.0.1 : xmt/rcv/%loss = 10/10/0%, min/avg/max = 0.1/x/0.3"},
		{name: "timing two fields", line: "10.0.0.1 : xmt/rcv/%loss = 10/10/0%, min/avg/max = 0.1/0.2"},
		{name: "timing NaN", line: "10.0.0.1 : xmt/rcv/%loss = 10/10/0%, min/avg/max = NaN/0.2/0.3"},
		{name: "dangling segment", line: "10.0.0.1 : xmt/rcv/%loss = 10/10/0%, garbage"},
		{name: "trailing comma", line: "10.0.0.1 : xmt/rcv/%loss = 10/10/0%,"},
		{name: "timing key truncated", line: "10.0.0.1 : xmt/rcv/%loss = 10/10/0%, min/avg = 0.1/0.2"},
		{name: "timing key extended", line: "10.0.0.1 : xmt/rcv/%loss = 10/10/0%, min/avg/max/mdev = 0.1/0.2/0.3/0.01"},
		{name: "unknown segment", line: "10.0.0.1 : xmt/rcv/%loss = 10/10/0%, garbage = x"},
		{name: "unknown segment on lost target", line: "10.0.0.1 : xmt/rcv/%loss = 10/0/100%, garbage = x"},
		{name: "replies without timing", line: "10.0.0.1 : xmt/rcv/%loss = 10/10/0%"},
		{name: "replies with only outage", line: "10.0.0.1 : xmt/rcv/%loss = 10/9/10%, outage(ms) = 100"},
		{name: "outage not a number", line: "10.0.0.1 : xmt/rcv/%loss = 10/9/10%, outage(ms) = soon, min/avg/max = 0.2/0.3/0.4"},
		{name: "timing repeated", line: "10.0.0.1 : xmt/rcv/%loss = 10/10/0%, min/avg/max = 0.1/0.2/0.3, min/avg/max = 0.1/0.2/0.3"},
		{name: "icmp error line", line: "ICMP Host Unreachable from 10.0.0.254 for ICMP Echo sent to 10.0.0.7"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			report, err := ParseLines([]string{tt.line})
			require.Error(t, err)
			assert.Nil(t, report)
			assert.True(t, errors.Is(err, ErrMalformedReportLine))

			var lineErr *MalformedLineError
			require.True(t, errors.As(err, &lineErr))
			assert.Equal(t, 1, lineErr.Line)
			assert.Equal(t, tt.line, lineErr.Content)
			assert.NotEmpty(t, lineErr.Reason)
		})
	}
}

func TestParseReportsOffendingLineNumber(t *testing.T) {
	input := "\n10.0.0.1 : xmt/rcv/%loss = 1/1/0%, min/avg/max = 1/1/1\nhostA BAD_LINE\n10.0.0.2 : xmt/rcv/%loss = 1/1/0%, min/avg/max = 1/1/1\n"

	_, err := Parse(strings.NewReader(input))

	var lineErr *MalformedLineError
	require.True(t, errors.As(err, &lineErr))
	assert.Equal(t, 3, lineErr.Line)
	assert.Equal(t, "hostA BAD_LINE", lineErr.Content)
	assert.Contains(t, err.Error(), "hostA BAD_LINE")
}

func TestParseLongLines(t *testing.T) {
	padded := "10.0.0.1" + strings.Repeat(" ", 100*1024) + " : xmt/rcv/%loss = 1/1/0%, min/avg/max = 1/2/3\n"
	report, err := Parse(strings.NewReader(padded))
	require.NoError(t, err)
	assert.Equal(t, models.TargetStats{Target: "10.0.0.1", Transmitted: 1, Received: 1, MinMs: 1, AvgMs: 2, MaxMs: 3}, report["10.0.0.1"])

	oversized := "10.0.0.1 : xmt/rcv/%loss = 1/0/100%\n\n" + strings.Repeat("x", maxLineLength+1) + "\n"
	_, err = Parse(strings.NewReader(oversized))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMalformedReportLine)

	var lineErr *MalformedLineError
	require.ErrorAs(t, err, &lineErr)
	assert.Equal(t, 3, lineErr.Line)
}

func TestParseIgnoresBlankLines(t *testing.T) {
	input := "\n\n   \n" + twoTargetReport + "\n\t\n"

	parsed, err := ParseDetailed(strings.NewReader(input))
	require.NoError(t, err)
	assert.Len(t, parsed.Report, 2)
	assert.Equal(t, 2, parsed.Lines)
	assert.Empty(t, parsed.Duplicates)
}

func TestParseEmptyInput(t *testing.T) {
	report, err := Parse(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, report)
}

func TestParseDuplicateTargetLastWins(t *testing.T) {
	lines := []string{
		"10.0.0.1 : xmt/rcv/%loss = 10/10/0%, min/avg/max = 0.1/0.2/0.3",
		"10.0.0.2 : xmt/rcv/%loss = 10/10/0%, min/avg/max = 0.1/0.2/0.3",
		"10.0.0.1 : xmt/rcv/%loss = 10/5/50%, min/avg/max = 1.1/1.2/1.3",
	}

	parsed, err := parseLines(lines)
	require.NoError(t, err)
	assert.Len(t, parsed.Report, 2)
	assert.Equal(t, 3, parsed.Lines)
	assert.Equal(t, []string{"10.0.0.1"}, parsed.Duplicates)
	assert.Equal(t, 5, parsed.Report["10.0.0.1"].Received)
	assert.Equal(t, 1.2, parsed.Report["10.0.0.1"].AvgMs)
}

func TestParseIsIdempotent(t *testing.T) {
	first, err := Parse(strings.NewReader(twoTargetReport))
	require.NoError(t, err)
	second, err := Parse(strings.NewReader(twoTargetReport))
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestFormatLineRoundTrip(t *testing.T) {
	tests := []models.TargetStats{
		{Target: "10.0.0.1", Transmitted: 10, Received: 10, MinMs: 0.12, AvgMs: 0.45, MaxMs: 1.02},
		{Target: "10.0.0.2", Transmitted: 10, Received: 0, LossPercent: 100},
		{Target: "10.0.0.3"},
		{Target: "2001:db8::7", Transmitted: 100, Received: 37, LossPercent: 63, MinMs: 12.5, AvgMs: 40.125, MaxMs: 251},
		{Target: "host.example.org", Transmitted: 1, Received: 1, LossPercent: 0},
	}

	for _, stats := range tests {
		t.Run(stats.Target, func(t *testing.T) {
			line := FormatLine(stats)
			report, err := ParseLines([]string{line})
			require.NoError(t, err, line)
			assert.Equal(t, stats, report[stats.Target])
		})
	}
}

func TestFormatLineMatchesFpingLayout(t *testing.T) {
	assert.Equal(t,
		"10.0.0.1 : xmt/rcv/%loss = 10/10/0%, min/avg/max = 0.12/0.45/1.02",
		FormatLine(models.TargetStats{Target: "10.0.0.1", Transmitted: 10, Received: 10, MinMs: 0.12, AvgMs: 0.45, MaxMs: 1.02}))
	assert.Equal(t,
		"10.0.0.2 : xmt/rcv/%loss = 10/0/100%",
		FormatLine(models.TargetStats{Target: "10.0.0.2", Transmitted: 10, LossPercent: 100}))
}

// generatedReport builds a valid report the way fping would print it
func generatedReport(rng *rand.Rand, n int) ([]string, models.Report) {
	lines := make([]string, 0, n)
	expected := make(models.Report, n)
	for i := 0; i < n; i++ {
		xmt := rng.Intn(200)
		rcv := 0
		if xmt > 0 {
			rcv = rng.Intn(xmt + 1)
		}
		stats := models.TargetStats{
			Target:      fmt.Sprintf("10.1.%d.%d", i/250, i%250+1),
			Transmitted: xmt,
			Received:    rcv,
		}
		if xmt > 0 {
			stats.LossPercent = (xmt - rcv) * 100 / xmt
		}
		if rcv > 0 {
			stats.MinMs = float64(rng.Intn(1000)) / 100
			stats.AvgMs = stats.MinMs + float64(rng.Intn(1000))/100
			stats.MaxMs = stats.AvgMs + float64(rng.Intn(1000))/100
		}
		lines = append(lines, FormatLine(stats))
		expected[stats.Target] = stats
	}
	return lines, expected
}

func TestParseGeneratedReports(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for round := 0; round < 20; round++ {
		lines, expected := generatedReport(rng, 1+rng.Intn(300))

		report, err := ParseLines(lines)
		require.NoError(t, err)
		require.Equal(t, expected, report)

		for target, stats := range report {
			assert.LessOrEqual(t, stats.Received, stats.Transmitted, target)
			assert.GreaterOrEqual(t, stats.LossPercent, 0, target)
			assert.LessOrEqual(t, stats.LossPercent, 100, target)
			if stats.Received == 0 {
				assert.Zero(t, stats.MinMs, target)
				assert.Zero(t, stats.AvgMs, target)
				assert.Zero(t, stats.MaxMs, target)
			}
		}
	}
}
