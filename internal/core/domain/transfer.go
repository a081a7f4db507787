package domain

import "strings"

// Markers delimiting the transfer location and credential inside an
// export job's free-text results blob. Each value runs from the end of
// its marker to the next semicolon.
const (
	containerURLMarker = "Container url: "
	sasTokenMarker     = "SAS token: "
)

// TransferDescriptor holds everything the external transfer tool needs
// to download a completed export.
type TransferDescriptor struct {
	// JobName is the export job the descriptor was extracted from.
	JobName string

	// LocationURI is the remote container holding the archive.
	LocationURI string

	// CredentialToken authorizes reads against LocationURI.
	CredentialToken string
}

// ParseTransferDescriptor extracts the transfer location and credential
// from an export results blob. It returns ErrNoTransferDescriptor while
// the blob lacks either marker, which callers treat as "not populated
// yet" rather than a failure.
func ParseTransferDescriptor(jobName, results string) (TransferDescriptor, error) {
	location, ok := cutMarked(results, containerURLMarker)
	if !ok {
		return TransferDescriptor{}, ErrNoTransferDescriptor
	}
	token, ok := cutMarked(results, sasTokenMarker)
	if !ok {
		return TransferDescriptor{}, ErrNoTransferDescriptor
	}

	return TransferDescriptor{
		JobName:         jobName,
		LocationURI:     location,
		CredentialToken: token,
	}, nil
}

// cutMarked returns the text between the first occurrence of marker and
// the next semicolon.
func cutMarked(s, marker string) (string, bool) {
	_, rest, ok := strings.Cut(s, marker)
	if !ok {
		return "", false
	}
	value, _, ok := strings.Cut(rest, ";")
	if !ok {
		return "", false
	}
	return value, true
}
