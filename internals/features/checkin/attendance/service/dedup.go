package service

import (
	"encoding/hex"

	"gerejaku_backend/internals/features/checkin/checkinerr"
	helper "gerejaku_backend/internals/helpers"

	"github.com/google/uuid"
	"golang.org/x/crypto/blake2b"
)

// ManualDedupKey: check-in manual selalu terikat ke member id.
// Sengaja tidak dicocokkan dengan kunci publik (telepon/nama).
func ManualDedupKey(memberID uuid.UUID) string {
	return "member:" + memberID.String()
}

// PublicDedupKey: identitas lemah dari form publik. Telepon dinormalisasi kalau ada,
// kalau tidak pakai nama yang sudah di-fold. Disimpan sebagai hash supaya index
// unik tidak berisi data pribadi mentah.
func PublicDedupKey(name, phone string) (string, error) {
	if p := helper.NormalizePhone(phone); p != "" {
		return "phone:" + digest(p), nil
	}
	if n := helper.FoldText(name); n != "" {
		return "name:" + digest(n), nil
	}
	return "", checkinerr.ErrInvalidIdentity
}

func digest(s string) string {
	sum := blake2b.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}
