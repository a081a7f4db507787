package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestParseTransferDescriptor_ExtractsBothValues tests marker extraction
func TestParseTransferDescriptor_ExtractsBothValues(t *testing.T) {
	results := "Export package ready. Container url: https://x/y; SAS token: ?sv=2023&sig=abc; size: 12MB"

	descriptor, err := ParseTransferDescriptor("job-1_Export", results)

	require.NoError(t, err)
	assert.Equal(t, "job-1_Export", descriptor.JobName)
	assert.Equal(t, "https://x/y", descriptor.LocationURI)
	assert.Equal(t, "?sv=2023&sig=abc", descriptor.CredentialToken)
}

// TestParseTransferDescriptor_IgnoresSurroundingText tests extraction is
// independent of whatever else the service writes into the blob
func TestParseTransferDescriptor_IgnoresSurroundingText(t *testing.T) {
	tests := []struct {
		name    string
		results string
	}{
		{
			name:    "markers only",
			results: "Container url: https://x/y; SAS token: ?sv=1;",
		},
		{
			name:    "leading noise",
			results: "Status: done; Items: 42; Container url: https://x/y; SAS token: ?sv=1; Trailer",
		},
		{
			name:    "multiline blob",
			results: "line one\nContainer url: https://x/y;\nSAS token: ?sv=1;\nline four",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			descriptor, err := ParseTransferDescriptor("j", tt.results)
			require.NoError(t, err)
			assert.Equal(t, "https://x/y", descriptor.LocationURI)
			assert.Equal(t, "?sv=1", descriptor.CredentialToken)
		})
	}
}

// TestParseTransferDescriptor_MissingMarkers tests incomplete blobs
func TestParseTransferDescriptor_MissingMarkers(t *testing.T) {
	tests := []struct {
		name    string
		results string
	}{
		{"empty", ""},
		{"status text only", "The export is being prepared"},
		{"url marker only", "Container url: https://x/y;"},
		{"token marker only", "SAS token: ?sv=1;"},
		{"url unterminated", "Container url: https://x/y SAS token: ?sv=1;"},
		{"token unterminated", "Container url: https://x/y; SAS token: ?sv=1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseTransferDescriptor("j", tt.results)
			assert.ErrorIs(t, err, ErrNoTransferDescriptor)
		})
	}
}

// TestParseTransferDescriptor_FirstOccurrenceWins tests repeated markers
func TestParseTransferDescriptor_FirstOccurrenceWins(t *testing.T) {
	results := "Container url: https://first/a; SAS token: ?one; Container url: https://second/b; SAS token: ?two;"

	descriptor, err := ParseTransferDescriptor("j", results)

	require.NoError(t, err)
	assert.Equal(t, "https://first/a", descriptor.LocationURI)
	assert.Equal(t, "?one", descriptor.CredentialToken)
}
