package antispam

import (
	"context"
	"fmt"
	"testing"
	"time"
)

// testGuard returns a guard whose clock the test controls.
func testGuard() (*MemoryGuard, *time.Time) {
	current := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	g := NewMemoryGuard()
	g.lastCleanup = current
	g.now = func() time.Time { return current }
	return g, &current
}

func submitN(t *testing.T, g *MemoryGuard, clock *time.Time, n int, ip string) {
	t.Helper()
	for i := 0; i < n; i++ {
		sub := Submission{
			IP:          ip,
			Email:       fmt.Sprintf("warga%d@example.com", i),
			Description: fmt.Sprintf("laporan nomor %d", i),
		}
		if d := g.Check(context.Background(), sub); !d.Allowed {
			t.Fatalf("pengajuan ke-%d seharusnya diterima, ditolak dengan %s", i+1, d.Code)
		}
		*clock = clock.Add(time.Second)
	}
}

func TestShortWindowLimitPerIP(t *testing.T) {
	g, clock := testGuard()
	submitN(t, g, clock, ShortLimitPerIP, "10.0.0.1")

	d := g.Check(context.Background(), Submission{IP: "10.0.0.1", Email: "lain@example.com", Description: "laporan lain"})
	if d.Allowed || d.Code != CodeRateLimitIPShort {
		t.Fatalf("pengajuan ke-6 seharusnya ditolak %s, dapat %+v", CodeRateLimitIPShort, d)
	}
	if d.Message == "" {
		t.Fatal("pesan penolakan kosong")
	}

	// A different IP is unaffected.
	d = g.Check(context.Background(), Submission{IP: "10.0.0.2", Email: "lain@example.com", Description: "laporan lain"})
	if !d.Allowed {
		t.Fatalf("IP lain seharusnya diterima, ditolak dengan %s", d.Code)
	}

	// The window slides: after 10 minutes the original IP may submit again.
	*clock = clock.Add(ShortWindow + time.Second)
	d = g.Check(context.Background(), Submission{IP: "10.0.0.1", Email: "baru@example.com", Description: "laporan baru sekali"})
	if !d.Allowed {
		t.Fatalf("setelah jendela bergeser seharusnya diterima, ditolak dengan %s", d.Code)
	}
}

func TestDailyLimitPerIP(t *testing.T) {
	g, clock := testGuard()

	// Fill the daily quota in bursts spaced outside the short window.
	total := 0
	for total < DailyLimitPerIP {
		batch := ShortLimitPerIP
		if total+batch > DailyLimitPerIP {
			batch = DailyLimitPerIP - total
		}
		for i := 0; i < batch; i++ {
			sub := Submission{
				IP:          "10.0.0.9",
				Email:       fmt.Sprintf("warga%d@example.com", total),
				Description: fmt.Sprintf("laporan harian %d", total),
			}
			if d := g.Check(context.Background(), sub); !d.Allowed {
				t.Fatalf("pengajuan ke-%d seharusnya diterima, ditolak dengan %s", total+1, d.Code)
			}
			total++
		}
		*clock = clock.Add(ShortWindow + time.Second)
	}

	d := g.Check(context.Background(), Submission{IP: "10.0.0.9", Email: "ke21@example.com", Description: "laporan ke-21"})
	if d.Allowed || d.Code != CodeRateLimitIPDaily {
		t.Fatalf("pengajuan ke-21 seharusnya ditolak %s, dapat %+v", CodeRateLimitIPDaily, d)
	}
}

func TestEmailLimit(t *testing.T) {
	g, clock := testGuard()

	for i := 0; i < LimitPerEmail; i++ {
		sub := Submission{
			IP:          fmt.Sprintf("10.0.1.%d", i),
			Email:       "Satu@Example.com",
			Description: fmt.Sprintf("laporan email %d", i),
		}
		if d := g.Check(context.Background(), sub); !d.Allowed {
			t.Fatalf("pengajuan ke-%d seharusnya diterima, ditolak dengan %s", i+1, d.Code)
		}
		*clock = clock.Add(time.Second)
	}

	// The email is matched case-insensitively and from any IP.
	d := g.Check(context.Background(), Submission{IP: "10.0.1.99", Email: "satu@example.com", Description: "laporan email keempat"})
	if d.Allowed || d.Code != CodeRateLimitEmail {
		t.Fatalf("email keempat seharusnya ditolak %s, dapat %+v", CodeRateLimitEmail, d)
	}

	*clock = clock.Add(EmailWindow + time.Second)
	d = g.Check(context.Background(), Submission{IP: "10.0.1.99", Email: "satu@example.com", Description: "laporan sesudah jendela"})
	if !d.Allowed {
		t.Fatalf("setelah satu jam seharusnya diterima, ditolak dengan %s", d.Code)
	}
}

func TestDuplicateContent(t *testing.T) {
	g, clock := testGuard()
	desc := "Jalan di depan kantor kelurahan rusak parah."

	if d := g.Check(context.Background(), Submission{IP: "10.0.2.1", Email: "a@example.com", Description: desc}); !d.Allowed {
		t.Fatalf("pengajuan pertama ditolak: %s", d.Code)
	}
	*clock = clock.Add(time.Minute)

	// Same email, different IP: duplicate.
	d := g.Check(context.Background(), Submission{IP: "10.0.2.2", Email: "a@example.com", Description: desc})
	if d.Allowed || d.Code != CodeDuplicateContent {
		t.Fatalf("duplikat via email seharusnya ditolak, dapat %+v", d)
	}

	// Same IP, different email: duplicate, even with extra whitespace and case.
	d = g.Check(context.Background(), Submission{IP: "10.0.2.1", Email: "b@example.com", Description: "  jalan di depan  kantor kelurahan RUSAK parah. "})
	if d.Allowed || d.Code != CodeDuplicateContent {
		t.Fatalf("duplikat via IP seharusnya ditolak, dapat %+v", d)
	}

	// Different IP and different email: allowed.
	d = g.Check(context.Background(), Submission{IP: "10.0.2.3", Email: "c@example.com", Description: desc})
	if !d.Allowed {
		t.Fatalf("pelapor berbeda seharusnya diterima, ditolak dengan %s", d.Code)
	}

	// After the duplicate window the original reporter may repeat.
	*clock = clock.Add(DupWindow + time.Second)
	d = g.Check(context.Background(), Submission{IP: "10.0.2.1", Email: "a@example.com", Description: desc})
	if !d.Allowed {
		t.Fatalf("setelah 30 menit seharusnya diterima, ditolak dengan %s", d.Code)
	}
}

func TestRejectionOrderIPBeforeDuplicate(t *testing.T) {
	g, clock := testGuard()
	desc := "laporan yang sama persis"

	if d := g.Check(context.Background(), Submission{IP: "10.0.3.1", Email: "a@example.com", Description: desc}); !d.Allowed {
		t.Fatalf("pengajuan pertama ditolak: %s", d.Code)
	}
	submitN(t, g, clock, ShortLimitPerIP-1, "10.0.3.1")

	// Violates both the short IP window and duplicate content; the IP
	// check runs first.
	d := g.Check(context.Background(), Submission{IP: "10.0.3.1", Email: "a@example.com", Description: desc})
	if d.Allowed || d.Code != CodeRateLimitIPShort {
		t.Fatalf("kode penolakan seharusnya %s, dapat %+v", CodeRateLimitIPShort, d)
	}
}

func TestRejectedAttemptConsumesNoQuota(t *testing.T) {
	g, clock := testGuard()
	submitN(t, g, clock, ShortLimitPerIP, "10.0.4.1")

	// Hammer the limiter; rejections must not extend the ledger.
	for i := 0; i < 50; i++ {
		d := g.Check(context.Background(), Submission{IP: "10.0.4.1", Email: "spam@example.com", Description: "spam terus"})
		if d.Allowed {
			t.Fatal("pengajuan berlebih seharusnya ditolak")
		}
		*clock = clock.Add(time.Second)
	}

	// Once the first five age out, the IP is immediately usable again.
	*clock = clock.Add(ShortWindow)
	d := g.Check(context.Background(), Submission{IP: "10.0.4.1", Email: "spam@example.com", Description: "laporan sah"})
	if !d.Allowed {
		t.Fatalf("kuota seharusnya pulih, ditolak dengan %s", d.Code)
	}
}

func TestCleanupDropsEmptyKeys(t *testing.T) {
	g, clock := testGuard()
	submitN(t, g, clock, 3, "10.0.5.1")

	*clock = clock.Add(DailyWindow + time.Minute)
	if d := g.Check(context.Background(), Submission{IP: "10.0.5.2", Email: "x@example.com", Description: "pemicu pembersihan"}); !d.Allowed {
		t.Fatalf("pengajuan pemicu ditolak: %s", d.Code)
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	if _, ok := g.perIP["10.0.5.1"]; ok {
		t.Fatal("kunci IP kedaluwarsa seharusnya dihapus saat pembersihan")
	}
	if len(g.recent) != 1 {
		t.Fatalf("daftar konten terbaru seharusnya tersisa 1, dapat %d", len(g.recent))
	}
}
