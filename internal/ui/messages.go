package ui

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

// Message keys.
const (
	MsgDeleteConfirm = "delete.confirm"
	MsgDeleteDone    = "delete.done"
	MsgDeleteFailed  = "delete.failed"
	MsgModifyConfirm = "modify.confirm"
	MsgModifyDone    = "modify.done"
	MsgModifyFailed  = "modify.failed"
	MsgCreateConfirm = "create.confirm"
	MsgCreateDone    = "create.done"
	MsgCreateFailed  = "create.failed"
)

// Korean is the default; it is the language the blog pages are written in.
var supported = []language.Tag{language.Korean, language.English}

var translations = map[language.Tag]map[string]string{
	language.Korean: {
		MsgDeleteConfirm: "정말 삭제하시겠습니까?",
		MsgDeleteDone:    "삭제가 완료되었습니다.",
		MsgDeleteFailed:  "삭제 실패하였습니다.",
		MsgModifyConfirm: "수정 하시겠습니까?",
		MsgModifyDone:    "수정 완료되었습니다.",
		MsgModifyFailed:  "수정 실패했습니다.",
		MsgCreateConfirm: "게시 하시겠습니까?",
		MsgCreateDone:    "등록 완료되었습니다.",
		MsgCreateFailed:  "등록 실패했습니다.",
	},
	language.English: {
		MsgDeleteConfirm: "Do you really want to delete this article?",
		MsgDeleteDone:    "The article was deleted.",
		MsgDeleteFailed:  "Failed to delete the article.",
		MsgModifyConfirm: "Save your changes?",
		MsgModifyDone:    "The article was updated.",
		MsgModifyFailed:  "Failed to update the article.",
		MsgCreateConfirm: "Publish this article?",
		MsgCreateDone:    "The article was published.",
		MsgCreateFailed:  "Failed to publish the article.",
	},
}

var (
	messages = buildCatalog()
	matcher  = language.NewMatcher(supported)
)

func buildCatalog() *catalog.Builder {
	b := catalog.NewBuilder(catalog.Fallback(language.Korean))
	for tag, msgs := range translations {
		for key, text := range msgs {
			if err := b.SetString(tag, key, text); err != nil {
				panic("ui: bad catalog entry " + key + ": " + err.Error())
			}
		}
	}
	return b
}

// NewPrinter returns a printer for the closest supported language to lang
// (a BCP 47 tag such as "en-US"). Unknown or empty input falls back to Korean.
func NewPrinter(lang string) *message.Printer {
	tag := language.Korean
	if lang != "" {
		if parsed, err := language.Parse(lang); err == nil {
			_, idx, conf := matcher.Match(parsed)
			if conf != language.No {
				tag = supported[idx]
			}
		}
	}
	return message.NewPrinter(tag, message.Catalog(messages))
}
