package util

import "testing"

func TestNormalizeListingURL(t *testing.T) {
	base := "https://www.alibaba.com"

	tests := []struct {
		name string
		href string
		want string
	}{
		{
			name: "relative path resolved against base",
			href: "/product-detail/widget_123.html",
			want: "https://www.alibaba.com/product-detail/widget_123.html",
		},
		{
			name: "absolute url unchanged",
			href: "https://www.alibaba.com/p/abc.html",
			want: "https://www.alibaba.com/p/abc.html",
		},
		{
			name: "tracking params stripped",
			href: "https://www.alibaba.com/p/abc.html?utm_source=feed&id=9",
			want: "https://www.alibaba.com/p/abc.html?id=9",
		},
		{
			name: "fragment dropped",
			href: "https://www.alibaba.com/p/abc.html#reviews",
			want: "https://www.alibaba.com/p/abc.html",
		},
		{
			name: "empty href",
			href: "",
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeListingURL(base, tt.href); got != tt.want {
				t.Errorf("NormalizeListingURL(%q) = %q, want %q", tt.href, got, tt.want)
			}
		})
	}
}
