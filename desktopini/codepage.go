package desktopini

import (
	"strconv"

	log "github.com/schollz/logger"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/ianaindex"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/encoding/korean"
	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/encoding/traditionalchinese"
	"golang.org/x/text/encoding/unicode"
)

// ANSI code pages Windows can run with.
var codePages = map[uint32]encoding.Encoding{
	437:   charmap.CodePage437,
	850:   charmap.CodePage850,
	866:   charmap.CodePage866,
	874:   charmap.Windows874,
	932:   japanese.ShiftJIS,
	936:   simplifiedchinese.GBK,
	949:   korean.EUCKR,
	950:   traditionalchinese.Big5,
	1250:  charmap.Windows1250,
	1251:  charmap.Windows1251,
	1252:  charmap.Windows1252,
	1253:  charmap.Windows1253,
	1254:  charmap.Windows1254,
	1255:  charmap.Windows1255,
	1256:  charmap.Windows1256,
	1257:  charmap.Windows1257,
	1258:  charmap.Windows1258,
	54936: simplifiedchinese.GB18030,
	65001: unicode.UTF8,
}

// codePage is what ANSI files are decoded from and encoded back to.
var codePage = charset(activeCodePage())

func charset(cp uint32) encoding.Encoding {
	if e, ok := codePages[cp]; ok {
		return e
	}
	if e, err := ianaindex.IANA.Encoding("windows-" + strconv.FormatUint(uint64(cp), 10)); err == nil && e != nil {
		return e
	}
	log.Debugf("unknown ANSI code page %d, using windows-1252", cp)
	return charmap.Windows1252
}
