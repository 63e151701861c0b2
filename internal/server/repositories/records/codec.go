package records

import (
	"encoding/base64"
	"encoding/hex"
	"fmt"

	"github.com/Noureldein28/security-todo/internal/common"
)

// encodedFields is the persisted text form of the four cryptographic fields,
// shared by the Postgres columns and the S3 JSON document.
type encodedFields struct {
	Ciphertext string `json:"ciphertext"`
	Nonce      string `json:"nonce"`
	AuthTag    string `json:"auth_tag"`
	Digest     string `json:"digest"`
}

func encodeFields(ciphertext, nonce, authTag, digest []byte) encodedFields {
	return encodedFields{
		Ciphertext: base64.StdEncoding.EncodeToString(ciphertext),
		Nonce:      base64.StdEncoding.EncodeToString(nonce),
		AuthTag:    base64.StdEncoding.EncodeToString(authTag),
		Digest:     hex.EncodeToString(digest),
	}
}

func decodeFields(f encodedFields) (ciphertext, nonce, authTag, digest []byte, err error) {
	ciphertext, err = base64.StdEncoding.DecodeString(f.Ciphertext)
	if err != nil {
		return nil, nil, nil, nil, fmt.Errorf("%w: ciphertext: %v", common.ErrMalformedRecord, err)
	}
	nonce, err = base64.StdEncoding.DecodeString(f.Nonce)
	if err != nil {
		return nil, nil, nil, nil, fmt.Errorf("%w: nonce: %v", common.ErrMalformedRecord, err)
	}
	authTag, err = base64.StdEncoding.DecodeString(f.AuthTag)
	if err != nil {
		return nil, nil, nil, nil, fmt.Errorf("%w: auth tag: %v", common.ErrMalformedRecord, err)
	}
	digest, err = hex.DecodeString(f.Digest)
	if err != nil {
		return nil, nil, nil, nil, fmt.Errorf("%w: digest: %v", common.ErrMalformedRecord, err)
	}
	return ciphertext, nonce, authTag, digest, nil
}
