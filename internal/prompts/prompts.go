package prompts

import (
	"fmt"
	"strings"

	"github.com/hoshinet/pagelate/internal/language"
)

// recognitionTemplate asks for a region-by-region listing pairing the original
// text with a suggested translation. The output is consumed as opaque
// reference text by the inpainting step, so the exact layout is advisory.
const recognitionTemplate = `You are an expert manga translator. Examine this manga page and list every piece of text on it: speech bubbles, thought bubbles, captions, signs, and sound effects.

For each text region output one line in reading order:
[position on page] original text -> suggested %s translation

Keep honorifics and character names consistent across the page. Translate sound effects with a short equivalent rather than a literal romanization. Output only the listing, no commentary.`

// recognitionChinese is a fixed prompt tuned for Japanese-source pages with
// Chinese output. Selected whenever the target language is Chinese.
const recognitionChinese = `你是一位资深日漫翻译。仔细检查这张漫画页，列出页面上的所有文字：对话气泡、内心独白、旁白、招牌和拟声词。

每个文字区域按阅读顺序输出一行：
[页面位置] 日文原文 -> 简体中文译文

保持人名和称呼前后一致，拟声词用简短的中文拟声词对应，不要音译。只输出列表，不要任何解释。`

const inpaintTemplate = `Translate all text in this manga page into %s and redraw the page with the translated text in place. Replace only the text inside speech bubbles, thought bubbles, captions, and sound effects. Preserve the original artwork, panel layout, bubble shapes, and typography style exactly. Keep the translated text fitted naturally inside each bubble.`

const inpaintChinese = `把这张漫画页上的所有文字翻译成简体中文，并把译文重新绘制到原位。只替换对话气泡、内心独白、旁白和拟声词里的文字。完全保留原有画风、分镜、气泡形状和字体风格，译文要自然地排布在每个气泡内。`

// Recognition builds the prompt for the text-recognition call. The context
// hint is appended verbatim when present.
func Recognition(target language.Target, contextHint string) string {
	var prompt string
	if target == language.Chinese {
		prompt = recognitionChinese
	} else {
		prompt = fmt.Sprintf(recognitionTemplate, target)
	}

	if hint := strings.TrimSpace(contextHint); hint != "" {
		prompt += "\n\nAdditional context from the reader:\n" + hint
	}
	return prompt
}

// Inpainting builds the instruction for the image-generation call, appending
// the recognition listing as reference when non-empty.
func Inpainting(target language.Target, reference string) string {
	var instruction string
	if target == language.Chinese {
		instruction = inpaintChinese
	} else {
		instruction = fmt.Sprintf(inpaintTemplate, target)
	}

	if ref := strings.TrimSpace(reference); ref != "" {
		instruction += "\n\nUse this reference listing of recognized text and translations:\n" + ref
	}
	return instruction
}
