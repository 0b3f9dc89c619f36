// aliases.go holds the multilingual lookup tables the engine matches against.
// Adding a language alias = adding one entry here.
package wikitext

import (
	"regexp"
	"sort"
	"strings"
)

// RedirectKeywords are the localized forms of #REDIRECT.
var RedirectKeywords = []string{
	"REDIRECT",
	"WEITERLEITUNG",
	"REDIRECTION",
	"REDIRECCIÓN",
	"REDIRECCION",
	"RINVIA",
	"RINVIO",
	"DOORVERWIJZING",
	"PRZEKIERUJ",
	"PATRZ",
	"REDIRECIONAMENTO",
	"ПЕРЕНАПРАВЛЕНИЕ",
	"ПЕРЕНАПР",
	"ПЕРЕНАПРАВЛЕННЯ",
	"OMDIRIGERING",
	"UUDELLEENOHJAUS",
	"OHJAUS",
	"ÁTIRÁNYÍTÁS",
	"YÖNLENDİRME",
	"YÖNLENDİR",
	"PŘESMĚRUJ",
	"PRESMERUJ",
	"ΑΝΑΚΑΤΕΥΘΥΝΣΗ",
	"転送",
	"リダイレクト",
	"重定向",
	"넘겨주기",
	"تحويل",
	"הפניה",
	"ĐỔI",
	"ALIH",
}

// CategoryNamespaces are the localized names of the Category namespace.
var CategoryNamespaces = []string{
	"Category",
	"Kategorie",
	"Catégorie",
	"Categoría",
	"Categoria",
	"Categorie",
	"Kategori",
	"Kategoria",
	"Kategorija",
	"Kategória",
	"Kategoriya",
	"Luokka",
	"Flokkur",
	"Категория",
	"Категорія",
	"Κατηγορία",
	"קטגוריה",
	"تصنيف",
	"カテゴリ",
	"分类",
	"分類",
	"분류",
	"Thể loại",
}

// FileNamespaces are the localized names of the File namespace.
var FileNamespaces = []string{
	"File",
	"Image",
	"Media",
	"Datei",
	"Bild",
	"Fichier",
	"Archivo",
	"Imagen",
	"Immagine",
	"Bestand",
	"Plik",
	"Arquivo",
	"Fil",
	"Tiedosto",
	"Файл",
	"Изображение",
	"Αρχείο",
	"קובץ",
	"ملف",
	"ファイル",
	"画像",
	"文件",
	"파일",
}

// InterwikiPrefixes name sister projects whose link text is kept with the
// prefix removed.
var InterwikiPrefixes = []string{
	"w", "wikipedia",
	"wikt", "wiktionary",
	"c", "commons",
	"s", "wikisource",
	"q", "wikiquote",
	"b", "wikibooks",
	"n", "wikinews",
	"v", "wikiversity",
	"voy", "wikivoyage",
	"species", "wikispecies",
	"d", "wikidata",
	"m", "meta",
	"mw", "mediawikiwiki",
	"foundation", "wmf",
	"phab", "phabricator",
}

// LanguageNames maps language codes to the English names used by
// {{lang-xx}} and for recognizing interlanguage links.
var LanguageNames = map[string]string{
	"af":  "Afrikaans",
	"ang": "Old English",
	"ar":  "Arabic",
	"be":  "Belarusian",
	"bg":  "Bulgarian",
	"bn":  "Bengali",
	"ca":  "Catalan",
	"cs":  "Czech",
	"cy":  "Welsh",
	"da":  "Danish",
	"de":  "German",
	"el":  "Greek",
	"en":  "English",
	"eo":  "Esperanto",
	"es":  "Spanish",
	"et":  "Estonian",
	"eu":  "Basque",
	"fa":  "Persian",
	"fi":  "Finnish",
	"fr":  "French",
	"ga":  "Irish",
	"gd":  "Scottish Gaelic",
	"gl":  "Galician",
	"grc": "Ancient Greek",
	"he":  "Hebrew",
	"hi":  "Hindi",
	"hr":  "Croatian",
	"hu":  "Hungarian",
	"hy":  "Armenian",
	"id":  "Indonesian",
	"is":  "Icelandic",
	"it":  "Italian",
	"ja":  "Japanese",
	"ka":  "Georgian",
	"kk":  "Kazakh",
	"ko":  "Korean",
	"la":  "Latin",
	"lt":  "Lithuanian",
	"lv":  "Latvian",
	"mk":  "Macedonian",
	"ms":  "Malay",
	"mt":  "Maltese",
	"nl":  "Dutch",
	"nn":  "Norwegian Nynorsk",
	"no":  "Norwegian",
	"pl":  "Polish",
	"pt":  "Portuguese",
	"ro":  "Romanian",
	"ru":  "Russian",
	"sa":  "Sanskrit",
	"sh":  "Serbo-Croatian",
	"sk":  "Slovak",
	"sl":  "Slovene",
	"sq":  "Albanian",
	"sr":  "Serbian",
	"sv":  "Swedish",
	"sw":  "Swahili",
	"ta":  "Tamil",
	"th":  "Thai",
	"tl":  "Tagalog",
	"tr":  "Turkish",
	"uk":  "Ukrainian",
	"ur":  "Urdu",
	"uz":  "Uzbek",
	"vi":  "Vietnamese",
	"yi":  "Yiddish",
	"zh":  "Chinese",
}

// Directives is the whitelist of __WORD__ behavior switches that are
// removed from output. Anything else between double underscores is text.
var Directives = []string{
	"NOTOC",
	"FORCETOC",
	"TOC",
	"NOEDITSECTION",
	"NEWSECTIONLINK",
	"NONEWSECTIONLINK",
	"NOGALLERY",
	"HIDDENCAT",
	"EXPECTUNUSEDCATEGORY",
	"NOCONTENTCONVERT",
	"NOCC",
	"NOTITLECONVERT",
	"NOTC",
	"INDEX",
	"NOINDEX",
	"STATICREDIRECT",
	"DISAMBIG",
	"NOGLOBAL",
	"ARCHIVEDTALK",
	"NOTALK",
	"EXPECTED_UNCONNECTED_PAGE",
	"START",
	"END",
	"KEIN_INHALTSVERZEICHNIS",
	"INHALTSVERZEICHNIS",
	"PASDESOMMAIRE",
	"SOMMAIRE",
	"SIN_TDC",
	"NOINDICE",
	"БЕЗ_ОГЛАВЛЕНИЯ",
}

// FooterTemplates are navigation and authority-control templates whose
// lines are dropped even when unknown templates are preserved.
var FooterTemplates = []string{
	"authority control",
	"normdaten",
	"autorité",
	"control de autoridades",
	"controllo di autorità",
	"normdata",
	"kontrola autorytatywna",
	"persondata",
	"defaultsort",
	"portal bar",
	"portal",
	"commons category",
	"commonscat",
	"commons",
	"wikiquote",
	"wiktionary",
	"sister project links",
	"reflist",
	"refs",
	"references",
	"stub",
	"coord missing",
	"taxonbar",
	"good article",
	"featured article",
	"use dmy dates",
	"use mdy dates",
	"short description",
	"pp-protected",
	"pp-vandalism",
}

// QuoteTemplates are template names the classifier reports as quotes.
var QuoteTemplates = []string{
	"quote",
	"blockquote",
	"cquote",
	"quotation",
	"quote box",
	"rquote",
}

// BlockTags are extension tags the classifier keeps together as one
// isolated-tag element when they span several lines.
var BlockTags = []string{
	"gallery",
	"references",
	"timeline",
	"imagemap",
	"score",
	"graph",
	"mapframe",
	"poem",
	"templatedata",
}

var (
	redirectRE    *regexp.Regexp
	categoryRE    *regexp.Regexp
	categoryLine  *regexp.Regexp
	fileLinkRE    *regexp.Regexp
	interwikiSet  = make(map[string]bool)
	fileNSSet     = make(map[string]bool)
	categoryNSSet = make(map[string]bool)
	directiveSet  = make(map[string]bool)
)

func init() {
	redirectRE = regexp.MustCompile(`(?is)^\s*#\s*(?:` + alternation(RedirectKeywords) + `)\s*:?\s*\[\[([^\]]*)\]\]`)
	categoryRE = regexp.MustCompile(`(?i)\[\[\s*(?:` + alternation(CategoryNamespaces) + `)\s*:\s*([^\]|]*)(?:\|[^\]]*)?\]\]`)
	categoryLine = regexp.MustCompile(`(?im)^[ \t]*(?:\[\[\s*(?:` + alternation(CategoryNamespaces) + `)\s*:[^\]]*\]\][ \t]*)+$\n?`)
	fileLinkRE = regexp.MustCompile(`(?i)^\s*(?:` + alternation(FileNamespaces) + `)\s*:`)

	for _, p := range InterwikiPrefixes {
		interwikiSet[p] = true
	}
	for _, ns := range FileNamespaces {
		fileNSSet[strings.ToLower(ns)] = true
	}
	for _, ns := range CategoryNamespaces {
		categoryNSSet[strings.ToLower(ns)] = true
	}
	for _, d := range Directives {
		directiveSet[d] = true
	}
}

// alternation quotes words into a regexp alternation, longest first so a
// shorter alias never shadows a longer one.
func alternation(words []string) string {
	sorted := append([]string(nil), words...)
	sort.Slice(sorted, func(i, j int) bool { return len(sorted[i]) > len(sorted[j]) })
	quoted := make([]string, len(sorted))
	for i, w := range sorted {
		quoted[i] = regexp.QuoteMeta(w)
	}
	return strings.Join(quoted, "|")
}

func hasAnyPrefix(name string, prefixes []string) bool {
	for _, p := range prefixes {
		if name == p || strings.HasPrefix(name, p+" ") || strings.HasPrefix(name, p+"-") {
			return true
		}
	}
	return false
}
