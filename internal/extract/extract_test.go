package extract

import (
	"reflect"
	"testing"

	"viral-scout/internal/config"
)

func TestMergeBrandsPriorityFirst(t *testing.T) {
	e := New(config.DefaultCoreKeywords, config.DefaultBrands, "보양대첩")
	text := Text("로얄캐닌에서 보양대첩으로 바꿨어요", "설사가 멈췄어요")
	got := JoinBrands(e.Merge(e.Brands(text), "듀먼"))
	if got != "보양대첩, 듀먼, 로얄캐닌" {
		t.Fatalf("merged = %q", got)
	}
}

func TestMergeBrandsDedupAndDeterminism(t *testing.T) {
	a := MergeBrands([]string{"힐스", "로얄캐닌"}, []string{"로얄캐닌", " 오리젠 ", "힐스"}, "보양대첩")
	b := MergeBrands([]string{"로얄캐닌", "힐스"}, []string{"오리젠"}, "보양대첩")
	if !reflect.DeepEqual(a, b) {
		t.Fatalf("order depends on input order: %v vs %v", a, b)
	}
	if want := []string{"로얄캐닌", "오리젠", "힐스"}; !reflect.DeepEqual(a, want) {
		t.Fatalf("merged = %v, want %v", a, want)
	}
}

func TestSplitBrandsDropsPlaceholders(t *testing.T) {
	got := SplitBrands("듀먼、 오리젠,없음, ,N/A")
	if want := []string{"듀먼", "오리젠"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("SplitBrands = %v, want %v", got, want)
	}
	if SplitBrands("없음") != nil {
		t.Fatalf("placeholder-only answer should yield nothing")
	}
}

func TestCoreKeywordsDictionaryOrder(t *testing.T) {
	e := New(config.DefaultCoreKeywords, config.DefaultBrands, "")
	got := e.CoreKeywords(Text("설사 때문에 사료 바꾼 강아지", "간식도 끊었어요. 설사 멈춤"))
	if want := []string{"강아지", "사료", "간식", "설사"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("CoreKeywords = %v, want %v", got, want)
	}
}

func TestTextWindowAndNFC(t *testing.T) {
	e := New(nil, []string{"듀먼"}, "")
	// decomposed jamo for 듀먼
	if got := e.Brands(Text("\u1103\u1172\u1106\u1165\u11ab 후기", "")); len(got) != 1 {
		t.Fatalf("decomposed text did not match: %v", got)
	}
	long := make([]rune, scanWindow)
	for i := range long {
		long[i] = '가'
	}
	if got := e.Brands(Text("제목", string(long)+"듀먼")); len(got) != 0 {
		t.Fatalf("match beyond scan window: %v", got)
	}
}
