package domain

import "encoding/json"

// IdentityInfo carries the public identifiers of the local daemon.
type IdentityInfo struct {
	PublicKey string `json:"public_key"`
	PeerID    string `json:"peer_id"`
}

// DecodeIdentityInfo decodes an identity topic payload.
func DecodeIdentityInfo(data []byte) (IdentityInfo, error) {
	var id IdentityInfo
	if err := json.Unmarshal(data, &id); err != nil {
		return IdentityInfo{}, err
	}
	return id, nil
}
