package subtitles

import "strings"

// Common traditional-to-simplified mixups seen in scraped TV subtitles.
var corrections = map[string]string{
	"防衛": "防卫", "正當": "正当", "証據": "证据", "檢察官": "检察官",
	"發現": "发现", "設計": "设计", "開始": "开始", "結束": "结束",
	"問題": "问题", "機會": "机会", "決定": "决定", "選擇": "选择",
}

// CorrectTypos rewrites known-bad character sequences before parsing.
func CorrectTypos(content string) string {
	for old, repl := range corrections {
		content = strings.ReplaceAll(content, old, repl)
	}
	return content
}
