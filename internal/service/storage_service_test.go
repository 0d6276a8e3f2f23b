package service

import (
	"bytes"
	"context"
	"hr_training_backend/internal/config"
	"hr_training_backend/internal/util"
	"os"
	"path/filepath"
	"testing"
)

var pngMagic = []byte{0x89, 'P', 'N', 'G'}

func TestPNGQRRendererRender(t *testing.T) {
	image, err := NewPNGQRRenderer().Render(`{"qr_code":"TRN-ABCD1234"}`, 0)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !bytes.HasPrefix(image, pngMagic) {
		t.Fatalf("expected png output")
	}
}

func TestNewTrainingQRCodeFormat(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		code := NewTrainingQRCode()
		if !util.IsTrainingQRCode(code) {
			t.Fatalf("code format: got=%s", code)
		}
		seen[code] = true
	}
	if len(seen) < 45 {
		t.Fatalf("codes are not random enough: %d distinct of 50", len(seen))
	}
}

func TestNewTrainingQRCodeUsesWholeAlphabetAtEveryPosition(t *testing.T) {
	seen := make([]map[byte]bool, util.QRCodeRandomLen)
	for i := range seen {
		seen[i] = make(map[byte]bool)
	}
	for i := 0; i < 5000; i++ {
		code := NewTrainingQRCode()[len(util.QRCodePrefix):]
		for pos := 0; pos < len(code); pos++ {
			seen[pos][code[pos]] = true
		}
	}
	for pos, chars := range seen {
		if len(chars) != len(qrCodeAlphabet) {
			t.Fatalf("position %d: want=%d distinct chars got=%d", pos, len(qrCodeAlphabet), len(chars))
		}
	}
}

func TestStorageServiceFallsBackToLocal(t *testing.T) {
	svc := NewStorageService(&config.StorageConfig{Type: "unknown", LocalPath: t.TempDir()})
	if _, ok := svc.Provider.(*LocalStorageProvider); !ok {
		t.Fatalf("provider: want local got=%T", svc.Provider)
	}
}

func TestStoreQRImageLocal(t *testing.T) {
	dir := t.TempDir()
	svc := NewStorageService(&config.StorageConfig{Type: util.StorageLocal, LocalPath: dir})

	qr := &TrainingQR{QRCode: "TRN-ABCD1234", Image: append([]byte{}, pngMagic...)}
	url, err := svc.StoreQRImage(context.Background(), qr)
	if err != nil {
		t.Fatalf("store: %v", err)
	}
	if url != "/uploads/training-qr/TRN-ABCD1234.png" {
		t.Fatalf("url: got=%s", url)
	}

	data, err := os.ReadFile(filepath.Join(dir, "training-qr", "TRN-ABCD1234.png"))
	if err != nil {
		t.Fatalf("read stored file: %v", err)
	}
	if !bytes.Equal(data, pngMagic) {
		t.Fatalf("stored bytes mismatch")
	}

	if err := svc.Delete(context.Background(), QRImageKey(qr.QRCode)); err != nil {
		t.Fatalf("delete: %v", err)
	}

	if _, err := svc.StoreQRImage(context.Background(), &TrainingQR{QRCode: "TRN-EMPTY000"}); err == nil {
		t.Fatalf("expected error for missing image")
	}
}
