package importer

import (
	"strings"

	"github.com/jjudge-oj/fps-import/types"
)

// FallbackTag is assigned when no rule fires; the tag set is never empty.
const FallbackTag = "general"

type tagRule struct {
	tag      string
	keywords []string
}

// tagRules is an ordered table: a tag is assigned when any keyword occurs in
// the concatenated title+description, case-insensitively for Latin keywords.
// The archives this importer consumes are predominantly Chinese, so most
// rules carry both scripts. Order determines the order tags appear in.
var tagRules = []tagRule{
	{"beginner", []string{"送分题", "hello", "你好", "a+b"}},
	{"loops", []string{"循环", "重复", "遍历", "迭代", "for", "while"}},
	{"conditionals", []string{"判断", "比较", "如果", "是否", "if "}},
	{"arrays", []string{"数组", "序列", "列表", "矩阵", "array"}},
	{"strings", []string{"字符串", "字符", "单词", "文本", "字母", "string"}},
	{"math", []string{"数学", "求和", "乘积", "阶乘", "公约数", "公倍数", "factorial", "gcd"}},
	{"sorting", []string{"排序", "从大到小", "从小到大", "升序", "降序", "sort"}},
	{"searching", []string{"查找", "搜索", "二分", "寻找", "search"}},
	{"recursion", []string{"递归", "斐波那契", "汉诺塔", "fibonacci", "hanoi"}},
	{"dp", []string{"背包", "最长", "最短", "knapsack", "dp"}},
	{"greedy", []string{"贪心", "最优", "greedy"}},
	{"patterns", []string{"图形", "三角形", "矩形", "菱形", "金字塔", "pyramid"}},
	{"base-conversion", []string{"进制", "二进制", "八进制", "十六进制", "binary", "hexadecimal"}},
	{"bitwise", []string{"位运算", "异或", "xor"}},
	{"simulation", []string{"模拟", "游戏", "卡牌", "simulation"}},
}

// Compound rules layered on top of the table. Each adds its full tag list
// when any keyword matches.
var compoundRules = []struct {
	keywords []string
	tags     []string
}{
	{[]string{"质数", "素数", "质因数", "prime"}, []string{"math", "prime-numbers"}},
	{[]string{"回文", "palindrome"}, []string{"strings", "palindrome"}},
	{[]string{"水仙花", "完全数", "幸运数", "narcissistic", "perfect number"}, []string{"math", "special-numbers"}},
}

// ioTitleKeywords assign the io tag from the title alone.
var ioTitleKeywords = []string{"输入", "输出", "input", "output"}

// Difficulty keyword lists. High is checked before Low so a text carrying
// both signal sets resolves to High; no match defaults to Mid.
var difficultyRules = []struct {
	bucket   types.Difficulty
	keywords []string
}{
	{types.DifficultyHigh, []string{"困难", "hard", "高级", "noip", "noi"}},
	{types.DifficultyLow, []string{"送分题", "入门", "hello", "简单", "easy"}},
}

// Classify derives tags and a difficulty bucket from a problem's title and
// description. It is a pure function of its inputs and is used only when the
// target problem lacks explicit metadata.
func Classify(title, description string) ([]string, types.Difficulty) {
	text := strings.ToLower(title + " " + description)

	var tags []string
	seen := make(map[string]bool)
	add := func(tag string) {
		if !seen[tag] {
			seen[tag] = true
			tags = append(tags, tag)
		}
	}

	for _, rule := range tagRules {
		if containsAny(text, rule.keywords) {
			add(rule.tag)
		}
	}

	if containsAny(strings.ToLower(title), ioTitleKeywords) {
		add("io")
	}

	for _, rule := range compoundRules {
		if containsAny(text, rule.keywords) {
			for _, tag := range rule.tags {
				add(tag)
			}
		}
	}

	if len(tags) == 0 {
		add(FallbackTag)
	}

	difficulty := types.DifficultyMid
	for _, rule := range difficultyRules {
		if containsAny(text, rule.keywords) {
			difficulty = rule.bucket
			break
		}
	}

	return tags, difficulty
}

func containsAny(text string, keywords []string) bool {
	for _, keyword := range keywords {
		if strings.Contains(text, keyword) {
			return true
		}
	}
	return false
}
