package prompt

// Rule names, in evaluation order.
const (
	RuleLength            = "length"
	RuleVague             = "vague"
	RuleConstraints       = "constraints"
	RuleContext           = "context"
	RuleNonCoding         = "non_coding"
	RuleTaskVerb          = "task_verb"
	RuleHardBlock         = "hard_block"
	RuleSensitiveSecurity = "sensitive_security"
)

// VaguePhrases signal a prompt that leaves the solution up to the model.
var VaguePhrases = []string{
	"なんでも", "適当に", "よろしく", "問題を解決",
	"動くようにして", "コードをなんとかして", "良い感じにして",
	"anything", "whatever works", "handle it somehow",
	"make it nice", "make it work", "fix the problem", "do something",
}

// ConstraintPhrases scope the size or shape of the expected change.
var ConstraintPhrases = []string{
	"行以内", "diff", "差分",
	"patch", "lines or less", "lines or fewer",
}

// NonCodingWords indicate a request that is not software work.
var NonCodingWords = []string{
	"詩", "物語", "エッセイ", "マーケティング",
	"一般的な知識", "歴史", "レシピ", "小説",
	"poetry", "story", "essay", "marketing",
	"general knowledge", "history", "recipe", "novel",
}

// TaskVerbs name a concrete engineering action.
var TaskVerbs = []string{
	"実装", "作成", "デバッグ", "リファクタリング",
	"テスト", "最適化", "修正", "生成",
	"implement", "create", "debug", "refactor",
	"test", "optimize", "fix", "generate",
}

// BlockTerms reject the prompt outright.
var BlockTerms = []string{
	"ヘイトスピーチ", "差別", "テロ", "児童ポルノ",
	"違法行為", "詐欺",
	"hate speech", "discrimination", "terrorism", "child exploitation",
	"illegal activity", "fraud",
}

// SecurityTerms mark security-sensitive requests.
var SecurityTerms = []string{
	"マルウェア", "ハッキング", "攻撃", "脆弱性", "エクスプロイト",
	"malware", "hacking", "attack", "vulnerability", "exploit",
}

// DefaultRules returns the canonical scoring table.
//
// The hard block sits after the task verb check and before the security
// check. Its position does not change the outcome: when it fires the score
// is 0 no matter what was deducted before it.
func DefaultRules() []Rule {
	return []Rule{
		{Name: RuleLength, Penalty: 30, Match: lengthOutOfRange},
		{Name: RuleVague, Penalty: 15, Cumulative: true, Match: countTerms(VaguePhrases)},
		{Name: RuleConstraints, Penalty: 20, Match: noneOf(ConstraintPhrases)},
		{Name: RuleContext, Penalty: 15, Match: missingProjectContext},
		{Name: RuleNonCoding, Penalty: 20, Cumulative: true, Match: countTerms(NonCodingWords)},
		{Name: RuleTaskVerb, Penalty: 10, Match: noneOf(TaskVerbs)},
		{Name: RuleHardBlock, Block: true, Match: countTerms(BlockTerms)},
		{Name: RuleSensitiveSecurity, Penalty: 25, Cumulative: true, Match: countTerms(SecurityTerms)},
	}
}
