package content

import (
	"regexp"
	"strings"
	"testing"
)

var tokenGrammarRe = regexp.MustCompile(`\[IMG:(\d+)\]`)

func testCodec() *Codec {
	return NewCodec(NewURLResolver("http://localhost:8080/api"))
}

func TestEncodeMatchedImageByURL(t *testing.T) {
	images := []ImageRef{{ID: 42, URL: "/uploads/target/a.png"}}
	markup := `awal<br><img src="http://localhost:8080/uploads/target/a.png"><br>akhir`
	got := testCodec().Encode(markup, images)
	if got != "awal\n[IMG:42]\nakhir" {
		t.Fatalf("unexpected text: %q", got)
	}
}

func TestEncodeMatchedImageByIDAttr(t *testing.T) {
	images := []ImageRef{{ID: 7, URL: "/uploads/medsos/b.png"}}
	markup := `<img src="pending://image/7" data-image-id="7">`
	got := testCodec().Encode(markup, images)
	if got != "[IMG:7]" {
		t.Fatalf("unexpected text: %q", got)
	}
}

func TestEncodeUnmatchedImageDropped(t *testing.T) {
	// Silent drop of unresolvable images is the documented behavior, not an
	// accident: the stored text must contain no dangling token.
	images := []ImageRef{{ID: 1, URL: "/uploads/a.png"}}
	markup := `sebelum<br><img src="/somewhere/else.png"><br>sesudah`
	got := testCodec().Encode(markup, images)
	if got != "sebelum\nsesudah" {
		t.Fatalf("unexpected text: %q", got)
	}
	if strings.Contains(got, "[IMG:") {
		t.Fatalf("dropped image must not leave a token: %q", got)
	}
}

func TestEncodeStripsMarkupAndEntities(t *testing.T) {
	got := testCodec().Encode(`<strong>penting</strong> &amp; <em>biasa</em>`, nil)
	if got != "penting & biasa" {
		t.Fatalf("unexpected text: %q", got)
	}
}

func TestEncodeTokenGrammar(t *testing.T) {
	images := []ImageRef{
		{ID: 3, URL: "/uploads/a.png"},
		{ID: 15, URL: "/uploads/b.png"},
	}
	markup := `x<br><img src="/uploads/a.png"><br>y [bukan token]<br><img src="/uploads/b.png">`
	got := testCodec().Encode(markup, images)
	for _, idx := range indexAll(got, "[IMG:") {
		rest := got[idx:]
		if !tokenGrammarRe.MatchString(rest) || tokenGrammarRe.FindStringIndex(rest)[0] != 0 {
			t.Fatalf("malformed token at %d in %q", idx, got)
		}
	}
	if len(tokenGrammarRe.FindAllString(got, -1)) != 2 {
		t.Fatalf("expected two tokens in %q", got)
	}
}

func TestDecodeRebuildsInlineImages(t *testing.T) {
	images := []ImageRef{{ID: 9, URL: "/uploads/poskas/c.png", Name: "c.png"}}
	got := testCodec().Decode("sebelum\n[IMG:9]\nsesudah", images)
	want := `sebelum<br><img src="http://localhost:8080/uploads/poskas/c.png" data-image-id="9" alt="c.png"><br>sesudah`
	if got != want {
		t.Fatalf("unexpected markup:\n got %q\nwant %q", got, want)
	}
}

func TestDecodeUnknownTokenDropped(t *testing.T) {
	got := testCodec().Decode("a [IMG:123] b", nil)
	if got != "a  b" {
		t.Fatalf("unexpected markup: %q", got)
	}
}

func TestDecodeEscapesText(t *testing.T) {
	got := testCodec().Decode("1 < 2 & [bukan]", nil)
	if got != "1 &lt; 2 &amp; [bukan]" {
		t.Fatalf("unexpected markup: %q", got)
	}
}

func TestRoundTripMatchedImage(t *testing.T) {
	codec := testCodec()
	images := []ImageRef{{ID: 21, URL: "/uploads/target/d.png"}}
	markup := `laporan<br><img src="http://http://localhost:8080/api/uploads/target/d.png"><br>selesai`

	text := codec.Encode(markup, images)
	if text != "laporan\n[IMG:21]\nselesai" {
		t.Fatalf("unexpected encoded text: %q", text)
	}

	back := codec.Decode(text, images)
	m := srcAttrRe.FindStringSubmatch(back)
	if m == nil {
		t.Fatalf("expected inline image in %q", back)
	}
	resolver := NewURLResolver("http://localhost:8080/api")
	if !resolver.Equal(m[1], images[0].URL) {
		t.Fatalf("round-trip image resolves to %q, want %q", m[1], images[0].URL)
	}

	again := codec.Encode(back, images)
	if again != text {
		t.Fatalf("second encode diverged: %q != %q", again, text)
	}
}

func indexAll(s, sub string) []int {
	var out []int
	offset := 0
	for {
		idx := strings.Index(s[offset:], sub)
		if idx == -1 {
			return out
		}
		out = append(out, offset+idx)
		offset += idx + len(sub)
	}
}
