package checkout

import (
	"errors"
	"fmt"
)

// ErrBadRequest: field request kosong/salah bentuk, ditolak sebelum
// mutasi apa pun.
var ErrBadRequest = errors.New("invalid checkout request")

// LineFailure: alasan per-line dari fase validasi.
type LineFailure struct {
	Line   LineRequest `json:"line"`
	Reason string      `json:"reason"`
}

// ValidationError membawa seluruh line yang gagal di fase 1.
// Tidak ada state yang berubah kalau error ini keluar.
type ValidationError struct {
	Failures []LineFailure
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("checkout validation failed for %d line(s)", len(e.Failures))
}

// StockChangedError: race terdeteksi saat commit (fase 1 sudah lolos tapi
// order lain keburu ambil stoknya). Dibedakan dari ValidationError supaya
// caller tahu harus re-fetch availability lalu retry sendiri. Sistem
// tidak pernah auto-retry.
type StockChangedError struct {
	Line LineRequest
}

func (e *StockChangedError) Error() string {
	return fmt.Sprintf("stock changed for %s (%s/%s), please retry", e.Line.ProductID, e.Line.Size, e.Line.Color)
}
