package highlights

import "strings"

// Keyword tables for TV-drama dialogue. Each category carries its own
// weight; a line accumulates weight per keyword hit.
var categories = []struct {
	Name     string
	Weight   float64
	Keywords []string
}{
	{
		Name:   "recap",
		Weight: 0.8,
		Keywords: []string{
			"之前", "刚才", "当时", "那时候", "上次", "早些时候",
		},
	},
	{
		Name:   "progression",
		Weight: 0.8,
		Keywords: []string{
			"接着", "然后", "随后", "后来", "接下来", "现在",
		},
	},
	{
		Name:   "twist_setup",
		Weight: 1.2,
		Keywords: []string{
			"但是", "然而", "不过", "其实", "原来", "没想到",
		},
	},
	{
		Name:   "revelation",
		Weight: 1.6,
		Keywords: []string{
			"真相", "秘密", "发现", "证据", "线索", "关键",
		},
	},
	{
		Name:   "emotion_turn",
		Weight: 1.2,
		Keywords: []string{
			"突然", "忽然", "意外", "震惊", "惊讶", "没料到",
		},
	},
	{
		Name:   "character",
		Weight: 1.0,
		Keywords: []string{
			"决定", "选择", "改变", "成长", "觉悟", "明白",
		},
	},
}

// plot_twist markers score highest: reversals are what short clips
// are cut around.
var twistIndicators = []string{
	"原来", "其实", "没想到", "竟然", "居然", "事实上",
	"真相是", "实际上", "不是", "而是", "反而", "相反",
}

var connectionWords = []string{
	"因为", "所以", "导致", "结果", "引起", "造成",
	"由于", "基于", "根据", "按照", "依据", "考虑到",
}

// Score rates one dialogue line for clip-worthiness on a 0..10 scale
// and reports which categories fired.
func Score(text string) (float64, map[string]int) {
	t := strings.TrimSpace(text)
	if t == "" {
		return 0, nil
	}

	hits := make(map[string]int)
	var score float64

	for _, cat := range categories {
		n := countKeywords(t, cat.Keywords)
		if n == 0 {
			continue
		}
		hits[cat.Name] = n
		score += float64(n) * cat.Weight
	}

	if n := countKeywords(t, twistIndicators); n > 0 {
		hits["plot_twist"] = n
		score += float64(n) * 2.0
	}
	if n := countKeywords(t, connectionWords); n > 0 {
		hits["causal_link"] = n
		score += float64(n) * 0.6
	}

	// Punctuation cues: conflict dialogue leans on ？ and ！.
	score += float64(strings.Count(t, "？")+strings.Count(t, "?")) * 0.5
	score += float64(strings.Count(t, "！")+strings.Count(t, "!")) * 0.4

	// Very short interjections rarely carry a scene.
	if len([]rune(t)) < 4 {
		score *= 0.5
	}

	if len(hits) == 0 {
		hits = nil
	}
	return clamp(score, 0, 10), hits
}

func countKeywords(text string, keywords []string) int {
	n := 0
	for _, kw := range keywords {
		n += strings.Count(text, kw)
	}
	return n
}

func clamp(x, a, b float64) float64 {
	if x < a {
		return a
	}
	if x > b {
		return b
	}
	return x
}
