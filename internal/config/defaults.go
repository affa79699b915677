package config

// Built-in dictionaries for the pet-food niche. Every list can be overridden
// from config.yaml.
var (
	DefaultSponsoredPhrases = []string{
		"협찬", "지원", "제공받", "무상", "체험단",
		"이벤트 당첨", "리뷰어", "서포터즈", "앰버서더",
		"원고료", "광고", "PR", "프로모션",
	}

	DefaultQuestionPhrases = []string{
		"어떤가요", "괜찮나요", "추천", "어떻게", "어때요",
		"먹여도 될까요", "괜찮을까요", "고민", "궁금",
		"문의", "질문", "여쭤", "도와주세요",
	}

	DefaultCoreKeywords = []string{
		"강아지", "고양이", "사료", "간식", "영양제", "습식", "건식",
		"기호성", "알러지", "설사", "식사거부", "눈물자국", "관절", "다이어트",
		"보양식", "워밍", "화식",
	}

	DefaultBrands = []string{
		"보양대첩", "로얄캐닌", "오리젠", "나우", "아카나", "힐스",
		"뉴트로", "내추럴발란스", "지위픽", "듀먼", "하림펫푸드", "네츄럴코어",
	}

	DefaultPriorityBrand = "보양대첩"

	DefaultPositiveWords = []string{"좋아요", "만족", "추천", "괜찮", "좋네요", "굿"}
	DefaultNegativeWords = []string{"별로", "실망", "안좋", "설사", "안맞", "후회", "최악"}
)
