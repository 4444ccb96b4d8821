package store

// The eight service classifications from the public-service complaint
// standard, with their Indonesian display labels.
var ClassificationLabels = map[string]string{
	"PERSYARATAN_LAYANAN":            "Persyaratan Layanan",
	"PROSEDUR_LAYANAN":               "Prosedur Layanan",
	"WAKTU_PELAYANAN":                "Waktu Pelayanan",
	"BIAYA_TARIF_PELAYANAN":          "Biaya/Tarif Pelayanan",
	"PRODUK_PELAYANAN":               "Produk Pelayanan",
	"KOMPETENSI_PELAKSANA_PELAYANAN": "Kompetensi Pelaksana Pelayanan",
	"PERILAKU_PETUGAS_PELAYANAN":     "Perilaku Petugas Pelayanan",
	"SARANA_DAN_PRASARANA":           "Sarana dan Prasarana",
}

// ClassificationOrder fixes the column/footnote order used by reports.
var ClassificationOrder = []string{
	"PERSYARATAN_LAYANAN",
	"PROSEDUR_LAYANAN",
	"WAKTU_PELAYANAN",
	"BIAYA_TARIF_PELAYANAN",
	"PRODUK_PELAYANAN",
	"KOMPETENSI_PELAKSANA_PELAYANAN",
	"PERILAKU_PETUGAS_PELAYANAN",
	"SARANA_DAN_PRASARANA",
}

var statusLabels = map[string]string{
	StatusBaru:    "Baru",
	StatusProses:  "Proses",
	StatusSelesai: "Selesai",
}

func HumanizeClassification(value string) string {
	if label, ok := ClassificationLabels[value]; ok {
		return label
	}
	return value
}

func HumanizeStatus(value string) string {
	if label, ok := statusLabels[value]; ok {
		return label
	}
	return value
}

func ValidClassification(value string) bool {
	_, ok := ClassificationLabels[value]
	return ok
}

func ValidStatus(value string) bool {
	_, ok := statusLabels[value]
	return ok
}
