// Package uadetect — детерминированная классификация клиента по User-Agent.
// Используется только для выбора лэйаута лендинга; критичные флоу
// должны работать при любом результате.
package uadetect

import "strings"

type Kind string

const (
	KindMobile  Kind = "MOBILE"
	KindTablet  Kind = "TABLET"
	KindDesktop Kind = "DESKTOP"
)

type Profile struct {
	Kind      Kind
	IsAndroid bool
	IsIOS     bool
}

// Порядок проверок и списки подстрок менять нельзя — от них зависит
// поведение лендинга, другого оракула нет.
var tabletNeedles = []string{
	"tablet",
	"kindle",
	"silk/",
	"playbook",
	"sm-t", // планшеты Samsung
	"nexus 7",
	"nexus 9",
	"xoom",
}

var mobileNeedles = []string{
	"mobi",
	"iphone",
	"ipod",
	"windows phone",
	"blackberry",
	"opera mini",
	"opera mobi",
}

func containsAny(s string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(s, n) {
			return true
		}
	}
	return false
}

// Classify — пустой UA считаем десктопом.
func Classify(userAgent string) Profile {
	ua := strings.TrimSpace(userAgent)
	if ua == "" {
		return Profile{Kind: KindDesktop}
	}
	ual := strings.ToLower(ua)

	isAndroid := strings.Contains(ual, "android")
	isIOS := containsAny(ual, []string{"iphone", "ipad", "ipod"})

	// Сначала планшеты.
	if strings.Contains(ual, "ipad") {
		return Profile{Kind: KindTablet, IsIOS: true}
	}

	if isAndroid {
		// У многих Android-планшетов в UA нет "mobile".
		if strings.Contains(ual, "mobile") {
			return Profile{Kind: KindMobile, IsAndroid: true}
		}
		return Profile{Kind: KindTablet, IsAndroid: true}
	}

	if containsAny(ual, tabletNeedles) {
		return Profile{Kind: KindTablet}
	}

	if containsAny(ual, mobileNeedles) {
		return Profile{Kind: KindMobile, IsIOS: isIOS}
	}

	return Profile{Kind: KindDesktop, IsIOS: isIOS}
}
