package domain

import "encoding/json"

// CloseReason explains why the daemon dropped its connection to the maker.
type CloseReason string

const (
	CloseReasonMakerVersionOutdated CloseReason = "MakerVersionOutdated"
	CloseReasonTakerVersionOutdated CloseReason = "TakerVersionOutdated"
)

// ConnectionStatus is the daemon's connection to the maker.
type ConnectionStatus struct {
	Online      bool         `json:"online"`
	CloseReason *CloseReason `json:"connection_close_reason"`
}

// DecodeConnectionStatus decodes a maker_status topic payload.
func DecodeConnectionStatus(data []byte) (ConnectionStatus, error) {
	var s ConnectionStatus
	if err := json.Unmarshal(data, &s); err != nil {
		return ConnectionStatus{}, err
	}
	return s, nil
}

// MakerCompatibility lists the protocols the maker no longer supports
// for this daemon version. The daemon omits the list when everything
// is supported.
type MakerCompatibility struct {
	UnsupportedProtocols []string `json:"unsupported_protocols"`
}

// Incompatible reports whether at least one protocol is unsupported.
func (m MakerCompatibility) Incompatible() bool {
	return len(m.UnsupportedProtocols) > 0
}

// DecodeMakerCompatibility decodes a maker_compatibility topic payload.
func DecodeMakerCompatibility(data []byte) (MakerCompatibility, error) {
	var m MakerCompatibility
	if err := json.Unmarshal(data, &m); err != nil {
		return MakerCompatibility{}, err
	}
	return m, nil
}
