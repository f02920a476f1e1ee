package channels

import "strings"

// Category is a group-title tag and the substrings that select it.
type Category struct {
	Tag      string
	Keywords []string
}

// Rules drive filtering, name cleanup and categorization. Categories are
// evaluated in slice order and the first match wins.
type Rules struct {
	Categories      []Category
	FilterKeywords  []string
	CleanupKeywords []string
	DefaultTag      string
}

// DefaultRules returns the rule set for the Sichuan Telecom multicast list.
func DefaultRules() Rules {
	return Rules{
		Categories: []Category{
			{Tag: "央视", Keywords: []string{"CCTV", "CETV", "CGTN"}},
			{Tag: "卫视", Keywords: []string{"卫视"}},
			{Tag: "少儿", Keywords: []string{"少儿", "动画", "卡通"}},
			{Tag: "电影", Keywords: []string{"电影", "影院", "院线", "大片", "爱浪漫",
				"爱喜剧", "爱科幻", "爱院线", "爱历史", "爱悬疑", "爱谍战"}},
			{Tag: "电视剧", Keywords: []string{"剧场", "电视剧", "热播", "热门", "经典", "都市", "谍战",
				"都市剧场", "热门剧场", "经典剧场", "爱旅行", "精彩影视"}},
			{Tag: "四川", Keywords: []string{"SCTV", "四川", "CDTV", "熊猫", "峨眉", "成都"}},
		},
		FilterKeywords: []string{
			"单音轨", "画中画", "热门", "直播室", "爱", "92",
			"测试", "备用", "临时", "应急",
		},
		// 超高清 must precede 高清 or it would leave a stray 超.
		CleanupKeywords: []string{"超高清", "高清", "-", "标清"},
		DefaultTag:      "其他",
	}
}

// Filtered reports whether a raw name contains any filter keyword.
func (r Rules) Filtered(name string) bool {
	return containsAny(name, r.FilterKeywords)
}

// Cleanup strips every cleanup keyword from name, in order, then trims
// surrounding space. Matching is plain substring replacement, so a keyword
// inside a longer token is removed too. Passes repeat until nothing changes:
// removing one keyword can splice another together ("高高清清").
func (r Rules) Cleanup(name string) string {
	for {
		prev := name
		for _, kw := range r.CleanupKeywords {
			if kw == "" {
				continue
			}
			name = strings.ReplaceAll(name, kw, "")
		}
		if name == prev {
			return strings.TrimSpace(name)
		}
	}
}

// Categorize returns the tag of the first category with a keyword in name,
// or DefaultTag.
func (r Rules) Categorize(name string) string {
	for _, c := range r.Categories {
		if containsAny(name, c.Keywords) {
			return c.Tag
		}
	}
	return r.DefaultTag
}

func containsAny(s string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}
