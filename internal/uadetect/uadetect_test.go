package uadetect

import "testing"

func TestClassify(t *testing.T) {
	cases := []struct {
		name      string
		ua        string
		kind      Kind
		isAndroid bool
		isIOS     bool
	}{
		{"empty", "", KindDesktop, false, false},
		{"spaces only", "   ", KindDesktop, false, false},
		{"ipad", "Mozilla/5.0 (iPad; CPU OS 15_0)", KindTablet, false, true},
		{"android phone", "Mozilla/5.0 (Linux; Android 13; Pixel 7) Mobile Safari/537.36", KindMobile, true, false},
		{"android tablet", "Mozilla/5.0 (Linux; Android 12; SM-X200) Safari/537.36", KindTablet, true, false},
		{"iphone", "Mozilla/5.0 (iPhone; CPU iPhone OS 16_0 like Mac OS X)", KindMobile, false, true},
		{"ipod", "Mozilla/5.0 (iPod touch; CPU iPhone OS 15_4)", KindMobile, false, true},
		{"kindle", "Mozilla/5.0 (X11; U; Linux; en-us) Kindle/3.0", KindTablet, false, false},
		{"silk", "Mozilla/5.0 Silk/3.1 like Chrome", KindTablet, false, false},
		{"windows phone", "Mozilla/5.0 (Windows Phone 10.0)", KindMobile, false, false},
		{"opera mini", "Opera/9.80 (J2ME/MIDP; Opera Mini/9.80)", KindMobile, false, false},
		{"desktop chrome", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) Chrome/120.0", KindDesktop, false, false},
		{"desktop mac", "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) Safari/605.1.15", KindDesktop, false, false},
		{"case insensitive", "MOZILLA (IPAD)", KindTablet, false, true},
	}

	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			p := Classify(tt.ua)
			if p.Kind != tt.kind {
				t.Fatalf("Classify(%q).Kind = %s, want %s", tt.ua, p.Kind, tt.kind)
			}
			if p.IsAndroid != tt.isAndroid || p.IsIOS != tt.isIOS {
				t.Fatalf("Classify(%q) flags = (android=%v, ios=%v), want (android=%v, ios=%v)",
					tt.ua, p.IsAndroid, p.IsIOS, tt.isAndroid, tt.isIOS)
			}
		})
	}
}

// Android-планшет не должен попадать в MOBILE даже при наличии "mobi"-подобных
// маркеров дальше по списку: проверка порядка веток.
func TestClassifyOrder(t *testing.T) {
	p := Classify("Mozilla/5.0 (Linux; Android 12; Nexus 7)")
	if p.Kind != KindTablet || !p.IsAndroid {
		t.Fatalf("android tablet branch must win: got %+v", p)
	}
	// iPad с "Mobile" в UA всё равно TABLET — ветка ipad первая.
	p = Classify("Mozilla/5.0 (iPad; CPU OS 15_0) Mobile/15E148")
	if p.Kind != KindTablet || !p.IsIOS {
		t.Fatalf("ipad branch must win over mobile markers: got %+v", p)
	}
}
