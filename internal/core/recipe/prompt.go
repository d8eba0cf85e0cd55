package recipe

import (
	"fmt"
	"strings"
)

// DefaultSystemPrompt 未設定 llm.system_prompt 時使用
const DefaultSystemPrompt = "あなたは家庭料理の専門家です。日本の家庭料理を中心に、与えられた材料と最近の献立履歴を考慮して、晩御飯のレシピを提案してください。必ず指定されたJSON形式のみで回答してください。"

const dateLayout = "2006-01-02"

// PromptInput 組裝 prompt 所需資料
type PromptInput struct {
	Ingredients   []IngredientFact
	RecentDinners []DinnerFact
	UserRequest   string
	Count         int
	Exclude       []string
}

const schemaBlock = `{
  "recipes": [
    {
      "dish_name": "料理名",
      "description": "一言説明",
      "cooking_time_minutes": 30,
      "servings": "2人前",
      "ingredients_needed": [
        { "name": "材料名", "quantity": "量", "from_fridge": true }
      ],
      "steps": [
        "手順1",
        "手順2"
      ],
      "tips": "ワンポイントアドバイス"
    }
  ]
}`

// BuildPrompt 組裝送往模型的 prompt
func BuildPrompt(in PromptInput) string {
	count := ClampCount(in.Count)
	var b strings.Builder

	b.WriteString("## 冷蔵庫にある材料\n")
	if len(in.Ingredients) == 0 {
		b.WriteString("（材料なし）\n")
	}
	for _, ing := range in.Ingredients {
		b.WriteString("- ")
		b.WriteString(ing.Name)
		if ing.Quantity != nil && strings.TrimSpace(*ing.Quantity) != "" {
			fmt.Fprintf(&b, "（%s）", strings.TrimSpace(*ing.Quantity))
		}
		if ing.ExpiryDate != nil {
			fmt.Fprintf(&b, "【期限: %s】", ing.ExpiryDate.Format(dateLayout))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n## 最近の晩御飯（直近2週間）\n")
	if len(in.RecentDinners) == 0 {
		b.WriteString("（履歴なし）\n")
	}
	for _, d := range in.RecentDinners {
		fmt.Fprintf(&b, "- %s: %s\n", d.Date.Format(dateLayout), d.DishName)
	}

	if req := strings.TrimSpace(in.UserRequest); req != "" {
		b.WriteString("\n## リクエスト\n")
		b.WriteString(req)
		b.WriteString("\n")
	}

	if exclude := dedupeNames(in.Exclude); len(exclude) > 0 {
		b.WriteString("\n## 除外する料理\n")
		for _, name := range exclude {
			fmt.Fprintf(&b, "- %s\n", name)
		}
	}

	b.WriteString("\n## お願い\n")
	fmt.Fprintf(&b, "上記の材料を使って、最近作っていない晩御飯のレシピを%dつ提案してください。\n", count)
	b.WriteString("賞味期限が近い材料があれば優先的に使ってください。\n")
	if count > 1 {
		b.WriteString("それぞれ異なる料理にしてください。\n")
	}
	fmt.Fprintf(&b, "\n以下のJSON形式で回答してください（JSONのみ、他のテキストは含めないでください）。recipes 配列には%d件のレシピを入れてください:\n", count)
	b.WriteString(schemaBlock)

	return b.String()
}

// dedupeNames 依正規化菜名去重，保留首次出現的寫法
func dedupeNames(names []string) []string {
	seen := make(map[string]struct{}, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		key := NormalizedKey(n)
		if key == "" {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, strings.TrimSpace(n))
	}
	return out
}
