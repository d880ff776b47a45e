package bot

import (
	"strings"
	"unicode"

	"github.com/agnivade/levenshtein"
)

type command int

const (
	cmdHelp command = iota
	cmdOpen
	cmdNext
	cmdPrev
	cmdFirst
	cmdLast
	cmdGoto
	cmdMoves
	cmdClose
	cmdList
	cmdSample
	cmdImport
	cmdPGN
	cmdExport
)

type subcommand struct {
	name    string
	aliases []string
	cmd     command
}

// subcommands is ordered; suggestion ties resolve to the earlier entry.
var subcommands = []subcommand{
	{name: "열기", aliases: []string{"open"}, cmd: cmdOpen},
	{name: "다음", aliases: []string{">", "next"}, cmd: cmdNext},
	{name: "이전", aliases: []string{"<", "prev"}, cmd: cmdPrev},
	{name: "처음", aliases: []string{"<<", "start"}, cmd: cmdFirst},
	{name: "끝", aliases: []string{">>", "end"}, cmd: cmdLast},
	{name: "이동", aliases: []string{"goto"}, cmd: cmdGoto},
	{name: "수순", aliases: []string{"moves"}, cmd: cmdMoves},
	{name: "닫기", aliases: []string{"close"}, cmd: cmdClose},
	{name: "목록", aliases: []string{"list"}, cmd: cmdList},
	{name: "샘플", aliases: []string{"sample"}, cmd: cmdSample},
	{name: "가져오기", aliases: []string{"import"}, cmd: cmdImport},
	{name: "pgn", cmd: cmdPGN},
	{name: "내보내기", aliases: []string{"export"}, cmd: cmdExport},
	{name: "도움말", aliases: []string{"help", "?"}, cmd: cmdHelp},
}

var commandIndex = func() map[string]command {
	idx := make(map[string]command)
	for _, sc := range subcommands {
		idx[sc.name] = sc.cmd
		for _, a := range sc.aliases {
			idx[a] = sc.cmd
		}
	}
	return idx
}()

const maxSuggestDistance = 2

func lookupCommand(word string) (command, bool) {
	c, ok := commandIndex[strings.ToLower(word)]
	return c, ok
}

// suggest returns the closest subcommand name within maxSuggestDistance.
func suggest(word string) (string, bool) {
	word = strings.ToLower(word)
	best, bestDist := "", maxSuggestDistance+1
	for _, sc := range subcommands {
		for _, candidate := range append([]string{sc.name}, sc.aliases...) {
			if len([]rune(candidate)) < 2 {
				continue
			}
			if d := levenshtein.ComputeDistance(word, candidate); d < bestDist {
				best, bestDist = sc.name, d
			}
		}
	}
	return best, best != ""
}

// cutWord splits off the first whitespace-delimited word and keeps the rest
// verbatim, newlines included.
func cutWord(s string) (word, rest string) {
	s = strings.TrimLeftFunc(s, unicode.IsSpace)
	i := strings.IndexFunc(s, unicode.IsSpace)
	if i < 0 {
		return s, ""
	}
	return s[:i], strings.TrimLeftFunc(s[i:], unicode.IsSpace)
}

// parseColor maps 백/흑 and w/b/white/black to the stored color code.
func parseColor(word string) (string, bool) {
	switch strings.ToLower(strings.TrimSpace(word)) {
	case "백", "w", "white":
		return "w", true
	case "흑", "b", "black":
		return "b", true
	default:
		return "", false
	}
}
