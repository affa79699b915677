package enrich

import (
	"fmt"

	"viral-scout/internal/model"
	"viral-scout/internal/textutil"
)

// Prompt builds the analysis prompt for p, with content bounded to budget runes.
func Prompt(p model.Post, budget int) string {
	content := textutil.Head(p.BestContent(), budget)
	if p.Source == model.SourceCafe {
		return fmt.Sprintf(`다음 카페 게시글을 분석해주세요:

제목: %s
본문: %s

규칙:
1. 마크다운(**), 이모지, 해시태그 사용 금지
2. 해당 내용이 없으면 비워두세요

다음 형식으로만 답변:
관련여부: (강아지/고양이 사료, 간식, 영양제 관련 글이면 예, 아니면 아니오)
요약: (100자 이내로 핵심 요약, 완전한 문장으로)
주요내용: (반려동물/제품 관련 키워드만 콤마로 나열, 예: 강아지, 식사거부, 설사, 보양대첩, 워밍)
경쟁사언급: (언급된 사료 브랜드명만 콤마로 나열)
감성: (긍정/중립/부정 중 하나)`, p.Title, content)
	}
	return fmt.Sprintf(`반려동물 사료 관련 블로그 글을 분석해주세요.

제목: %s
본문: %s

규칙:
1. 이 글이 "강아지" 또는 "고양이"와 직접적으로 관련된 글인지 판단하세요. (소라게, 햄스터, 사람 음식 등은 False)
2. 마크다운(**), 이모지, 해시태그 사용 금지
3. 각 필드는 간결하게 작성하되, 문장이 중간에 끊기지 않도록 '다'로 끝나는 완전한 문장으로 작성하세요. (권장 100자, 최대 150자)
4. 해당 내용이 없으면 빈 문자열로 작성

아래 JSON 형식으로만 응답 (다른 말 없이 JSON만):
{
  "반려동물관련": true 또는 false,
  "요약": "핵심 내용 3-4문장 요약 (100~150자 내외 자연스러운 매듭짓기)",
  "주요내용": "언급된 제품 특징이나 효과",
  "경쟁사언급": "언급된 경쟁 브랜드명만 (없으면 빈칸)",
  "감성": "긍정/중립/부정 중 하나",
  "액션포인트": "개선 제안사항"
}`, p.Title, content)
}

func commentPrompt(text string) string {
	return fmt.Sprintf(`다음 댓글의 감성을 분석하세요:

"%s"

'긍정', '부정', '중립' 중 하나로만 답변:`, text)
}
