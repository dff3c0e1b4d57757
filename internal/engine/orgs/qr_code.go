package orgs

import (
	"encoding/base64"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/skip2/go-qrcode"
)

const (
	DisplayQRSize = 256
	PrintQRSize   = 512
)

// SignInURL is the guest self-registration page a QR code points at.
func SignInURL(clientURL, orgID, orgName string) string {
	name := strings.ReplaceAll(url.QueryEscape(orgName), "+", "%20")
	return fmt.Sprintf("%s/guest/signin/%s?org=%s", strings.TrimRight(clientURL, "/"), url.PathEscape(orgID), name)
}

func GenerateQRCode(content string, size int) ([]byte, error) {
	if size == 0 {
		size = PrintQRSize
	}

	if size < 128 || size > 2048 {
		return nil, errors.New("invalid size: must be between 128 and 2048")
	}

	qr, err := qrcode.New(content, qrcode.Medium)
	if err != nil {
		return nil, err
	}

	return qr.PNG(size)
}

// GenerateQRDataURL encodes content as a base64 PNG data URL.
func GenerateQRDataURL(content string, size int) (string, error) {
	png, err := GenerateQRCode(content, size)
	if err != nil {
		return "", err
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(png), nil
}
