package security

import (
	"testing"
	"time"
)

// TestValidateImageURL は画像URLの静的検証を検証する。
func TestValidateImageURL(t *testing.T) {
	g := NewImageGuard()

	tests := []struct {
		name    string
		url     string
		wantErr bool
	}{
		{name: "公開HTTPSのURL", url: "https://example.com/images/house.jpg", wantErr: false},
		{name: "公開HTTPのURL", url: "http://example.com/house.jpg", wantErr: false},
		{name: "空URL", url: "", wantErr: true},
		{name: "fileスキーム", url: "file:///etc/passwd", wantErr: true},
		{name: "ftpスキーム", url: "ftp://example.com/x.jpg", wantErr: true},
		{name: "localhost", url: "http://localhost/x.jpg", wantErr: true},
		{name: "ループバックIP", url: "http://127.0.0.1/x.jpg", wantErr: true},
		{name: "プライベートIP 10.x", url: "http://10.0.0.5/x.jpg", wantErr: true},
		{name: "プライベートIP 192.168.x", url: "http://192.168.1.1/x.jpg", wantErr: true},
		{name: "プライベートIP 172.16.x", url: "http://172.16.0.1/x.jpg", wantErr: true},
		{name: "クラウドメタデータIP", url: "http://169.254.169.254/latest/meta-data/", wantErr: true},
		{name: "IPv6ループバック", url: "http://[::1]/x.jpg", wantErr: true},
		{name: "公開IPアドレス", url: "http://93.184.216.34/x.jpg", wantErr: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := g.ValidateImageURL(tt.url)
			if tt.wantErr && err == nil {
				t.Errorf("ValidateImageURL(%q) はエラーを返すべき", tt.url)
			}
			if !tt.wantErr && err != nil {
				t.Errorf("ValidateImageURL(%q) = %v", tt.url, err)
			}
		})
	}
}

// TestNewSafeClient はSSRF防止クライアントの生成を検証する。
func TestNewSafeClient(t *testing.T) {
	g := NewImageGuard()
	client := g.NewSafeClient(5 * time.Second)
	if client == nil {
		t.Fatal("クライアントが生成されていない")
	}
}
