package orgs

import (
	"bytes"
	"encoding/base64"
	"strings"
	"testing"
)

func TestGenerateQRCode(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		size    int
		wantErr bool
	}{
		{
			name:    "Valid QR Code",
			url:     "http://localhost:3000/guest/signin/org1",
			size:    512,
			wantErr: false,
		},
		{
			name:    "Default Size",
			url:     "http://localhost:3000/guest/signin/org1",
			size:    0,
			wantErr: false,
		},
		{
			name:    "Size Too Small",
			url:     "http://localhost:3000/guest/signin/org1",
			size:    100,
			wantErr: true,
		},
		{
			name:    "Size Too Large",
			url:     "http://localhost:3000/guest/signin/org1",
			size:    5000,
			wantErr: true,
		},
	}

	pngMagic := []byte{0x89, 'P', 'N', 'G'}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := GenerateQRCode(tt.url, tt.size)
			if (err != nil) != tt.wantErr {
				t.Errorf("GenerateQRCode() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if !tt.wantErr && !bytes.HasPrefix(got, pngMagic) {
				t.Errorf("GenerateQRCode() did not return a PNG")
			}
		})
	}
}

func TestGenerateQRDataURL(t *testing.T) {
	got, err := GenerateQRDataURL("http://localhost:3000/guest/signin/org1", DisplayQRSize)
	if err != nil {
		t.Fatalf("GenerateQRDataURL() error = %v", err)
	}

	const prefix = "data:image/png;base64,"
	if !strings.HasPrefix(got, prefix) {
		t.Fatalf("GenerateQRDataURL() = %q, missing data URL prefix", got[:32])
	}
	if _, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(got, prefix)); err != nil {
		t.Errorf("payload is not valid base64: %v", err)
	}
}

func TestSignInURL(t *testing.T) {
	got := SignInURL("http://localhost:3000/", "org1", "Acme & Sons Ltd")
	want := "http://localhost:3000/guest/signin/org1?org=Acme%20%26%20Sons%20Ltd"
	if got != want {
		t.Errorf("SignInURL() = %q, want %q", got, want)
	}
}
