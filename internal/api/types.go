package api

import (
	"regexp"
	"strings"

	"pengaduan-service/internal/store"
)

// SubmitComplaintRequest is the public submission body. Field names follow
// the public form.
type SubmitComplaintRequest struct {
	NamaLengkap  string `json:"namaLengkap"`
	Email        string `json:"email"`
	NomorTelepon string `json:"nomorTelepon"`
	Klasifikasi  string `json:"klasifikasi"`
	Deskripsi    string `json:"deskripsi"`
	// Honeypot: hidden on the real form, so any value means a bot.
	HPField string `json:"hp_field"`
}

var (
	phonePattern = regexp.MustCompile(`^(\+62|08)[0-9]{7,13}$`)
	emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
)

func (r *SubmitComplaintRequest) Normalize() {
	r.NamaLengkap = strings.TrimSpace(r.NamaLengkap)
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	r.NomorTelepon = strings.TrimSpace(r.NomorTelepon)
	r.Klasifikasi = strings.TrimSpace(strings.ToUpper(r.Klasifikasi))
	r.Deskripsi = strings.TrimSpace(r.Deskripsi)
}

func (r *SubmitComplaintRequest) Validate() error {
	if length := len([]rune(r.NamaLengkap)); length < 3 || length > 150 {
		return errBadRequest("namaLengkap harus 3 sampai 150 karakter")
	}
	if len(r.Email) > 190 || !emailPattern.MatchString(r.Email) {
		return errBadRequest("email tidak valid")
	}
	if !phonePattern.MatchString(r.NomorTelepon) {
		return errBadRequest("nomorTelepon harus diawali +62 atau 08")
	}
	if !store.ValidClassification(r.Klasifikasi) {
		return errBadRequest("klasifikasi tidak dikenal")
	}
	if len([]rune(r.Deskripsi)) > 1500 {
		return errBadRequest("deskripsi maksimal 1500 karakter")
	}
	return nil
}

// LoginRequest is the admin credential body.
type LoginRequest struct {
	Identifier string `json:"identifier"`
	Password   string `json:"password"`
}

// UpdateComplaintRequest is the admin triage patch; omitted fields stay
// untouched.
type UpdateComplaintRequest struct {
	Status         *string `json:"status"`
	RTL            *string `json:"rtl"`
	TanggalSelesai *string `json:"tanggalSelesai"` // YYYY-MM-DD
	Note           string  `json:"note"`
}

func (r *UpdateComplaintRequest) Validate() error {
	if r.Status == nil && r.RTL == nil && r.TanggalSelesai == nil {
		return errBadRequest("tidak ada field yang diubah")
	}
	if r.Status != nil {
		normalized := strings.ToUpper(strings.TrimSpace(*r.Status))
		if !store.ValidStatus(normalized) {
			return errBadRequest("status tidak dikenal")
		}
		*r.Status = normalized
	}
	return nil
}

// NotifyRequest optionally overrides the stored fields when re-sending a
// status notification.
type NotifyRequest struct {
	StatusOverride         string `json:"statusOverride"`
	RTLOverride            *string `json:"rtlOverride"`
	TanggalSelesaiOverride string `json:"tanggalSelesaiOverride"`
}

// SheetsExportRequest selects the period for a Google Sheets export.
type SheetsExportRequest struct {
	Year  string `json:"year"`
	Month string `json:"month"`
}

type apiError struct {
	Message string
	Code    int
}

func (e apiError) Error() string {
	return e.Message
}

func errBadRequest(message string) error {
	return apiError{Message: message, Code: 400}
}
