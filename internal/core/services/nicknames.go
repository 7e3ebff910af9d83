package services

import (
	"sort"
	"sync"
)

// nicknamePairs maps a nickname to the formal names it can stand for.
var nicknamePairs = map[string][]string{
	"abe":     {"abraham"},
	"abby":    {"abigail"},
	"al":      {"albert", "alan", "alfred"},
	"alex":    {"alexander", "alexandra"},
	"andy":    {"andrew"},
	"barb":    {"barbara"},
	"becky":   {"rebecca"},
	"ben":     {"benjamin"},
	"benny":   {"benjamin"},
	"bernie":  {"bernard"},
	"bert":    {"albert", "herbert"},
	"beth":    {"elizabeth"},
	"betsy":   {"elizabeth"},
	"betty":   {"elizabeth"},
	"bill":    {"william"},
	"billy":   {"william"},
	"bob":     {"robert"},
	"bobby":   {"robert"},
	"cal":     {"calvin"},
	"cathy":   {"catherine"},
	"charlie": {"charles"},
	"chet":    {"chester"},
	"chris":   {"christopher", "christine", "christina"},
	"chuck":   {"charles"},
	"cindy":   {"cynthia"},
	"connie":  {"constance"},
	"dan":     {"daniel"},
	"danny":   {"daniel"},
	"dave":    {"david"},
	"davey":   {"david"},
	"deb":     {"deborah"},
	"debbie":  {"deborah"},
	"dick":    {"richard"},
	"don":     {"donald"},
	"donny":   {"donald"},
	"doug":    {"douglas"},
	"drew":    {"andrew"},
	"ed":      {"edward"},
	"eddie":   {"edward"},
	"eliza":   {"elizabeth"},
	"fran":    {"frances"},
	"frank":   {"francis", "franklin"},
	"fred":    {"frederick"},
	"freddie": {"frederick"},
	"gene":    {"eugene"},
	"gerry":   {"gerald"},
	"greg":    {"gregory"},
	"gus":     {"augustus"},
	"hank":    {"henry"},
	"harry":   {"henry"},
	"herb":    {"herbert"},
	"ike":     {"isaac"},
	"jack":    {"john"},
	"jake":    {"jacob"},
	"jamie":   {"james"},
	"jan":     {"janet"},
	"jeff":    {"jeffrey"},
	"jen":     {"jennifer"},
	"jenn":    {"jennifer"},
	"jenny":   {"jennifer"},
	"jerry":   {"gerald", "jerome"},
	"jim":     {"james"},
	"jimmy":   {"james"},
	"joe":     {"joseph"},
	"joey":    {"joseph"},
	"johnny":  {"john"},
	"jon":     {"jonathan"},
	"josh":    {"joshua"},
	"kate":    {"catherine", "katherine"},
	"kathy":   {"katherine", "kathleen"},
	"katie":   {"catherine", "katherine"},
	"ken":     {"kenneth"},
	"kenny":   {"kenneth"},
	"kim":     {"kimberly"},
	"larry":   {"lawrence"},
	"len":     {"leonard"},
	"lenny":   {"leonard"},
	"liam":    {"william"},
	"liz":     {"elizabeth"},
	"lizzy":   {"elizabeth"},
	"lou":     {"louis"},
	"maggie":  {"margaret"},
	"manny":   {"manuel"},
	"marty":   {"martin"},
	"matt":    {"matthew"},
	"max":     {"maxwell", "maximilian"},
	"meg":     {"margaret"},
	"mel":     {"melvin"},
	"mick":    {"michael"},
	"mike":    {"michael"},
	"mikey":   {"michael"},
	"mitch":   {"mitchell"},
	"molly":   {"mary"},
	"nat":     {"nathaniel"},
	"nate":    {"nathaniel", "nathan"},
	"ned":     {"edward"},
	"nick":    {"nicholas"},
	"norm":    {"norman"},
	"ollie":   {"oliver"},
	"pam":     {"pamela"},
	"pat":     {"patrick", "patricia"},
	"patty":   {"patricia"},
	"peggy":   {"margaret"},
	"pete":    {"peter"},
	"phil":    {"philip", "phillip"},
	"polly":   {"mary"},
	"ray":     {"raymond"},
	"rich":    {"richard"},
	"richie":  {"richard"},
	"rick":    {"richard"},
	"ricky":   {"richard"},
	"rob":     {"robert"},
	"robbie":  {"robert"},
	"ron":     {"ronald"},
	"ronnie":  {"ronald"},
	"rudy":    {"rudolph"},
	"russ":    {"russell"},
	"sally":   {"sarah"},
	"sam":     {"samuel", "samantha"},
	"sammy":   {"samuel"},
	"sandy":   {"sandra"},
	"stan":    {"stanley"},
	"steve":   {"steven", "stephen"},
	"stevie":  {"steven", "stephen"},
	"sue":     {"susan"},
	"suzy":    {"susan"},
	"ted":     {"edward", "theodore"},
	"teddy":   {"edward", "theodore"},
	"terry":   {"terrence", "teresa"},
	"tess":    {"theresa"},
	"theo":    {"theodore"},
	"tim":     {"timothy"},
	"timmy":   {"timothy"},
	"tom":     {"thomas"},
	"tommy":   {"thomas"},
	"tony":    {"anthony"},
	"tricia":  {"patricia"},
	"val":     {"valerie"},
	"vicky":   {"victoria"},
	"vince":   {"vincent"},
	"walt":    {"walter"},
	"wes":     {"wesley"},
	"will":    {"william"},
	"willy":   {"william"},
	"zach":    {"zachary"},
}

// NicknameTable is an immutable bidirectional nickname to formal-name mapping.
type NicknameTable struct {
	formals   map[string][]string
	nicknames map[string][]string
}

var (
	defaultNicknames     *NicknameTable
	defaultNicknamesOnce sync.Once
)

// DefaultNicknames returns the built-in table. It is built once and shared.
func DefaultNicknames() *NicknameTable {
	defaultNicknamesOnce.Do(func() {
		defaultNicknames = NewNicknameTable(nicknamePairs)
	})
	return defaultNicknames
}

// NewNicknameTable builds a table from nickname to formal names.
// The input is copied.
func NewNicknameTable(pairs map[string][]string) *NicknameTable {
	t := &NicknameTable{
		formals:   make(map[string][]string, len(pairs)),
		nicknames: make(map[string][]string),
	}
	for nick, formals := range pairs {
		t.formals[nick] = append([]string(nil), formals...)
		for _, f := range formals {
			t.nicknames[f] = append(t.nicknames[f], nick)
		}
	}
	for f := range t.nicknames {
		sort.Strings(t.nicknames[f])
	}
	return t
}

// Len returns the number of nickname entries.
func (t *NicknameTable) Len() int {
	return len(t.formals)
}

// Formal returns the formal names a nickname stands for, primary first.
func (t *NicknameTable) Formal(name string) []string {
	return append([]string(nil), t.formals[name]...)
}

// Nicknames returns the nicknames of a formal name in sorted order.
func (t *NicknameTable) Nicknames(formal string) []string {
	return append([]string(nil), t.nicknames[formal]...)
}

// Equivalents returns every given name interchangeable with name, including
// name itself, in sorted order: its formal names, and the nicknames of
// those formal names (or of name, when name is itself formal).
func (t *NicknameTable) Equivalents(name string) []string {
	if name == "" {
		return nil
	}
	seen := map[string]struct{}{name: {}}
	roots := []string{name}
	roots = append(roots, t.formals[name]...)
	for _, root := range roots {
		seen[root] = struct{}{}
		for _, nick := range t.nicknames[root] {
			seen[nick] = struct{}{}
		}
	}

	out := make([]string, 0, len(seen))
	for n := range seen {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}
