package cricsheet

import "encoding/json"

// Document is the top-level envelope of a Cricsheet match file.
// Sections stay raw so each extraction stage decodes (and fails) independently.
type Document struct {
	Meta    json.RawMessage `json:"meta"`
	Info    json.RawMessage `json:"info"`
	Innings json.RawMessage `json:"innings"`

	keys int
}

// Meta holds the source metadata block
type Meta struct {
	DataVersion Text `json:"data_version"`
	Created     Text `json:"created"`
	Revision    Int  `json:"revision"`
}

// Info holds the match-level section
type Info struct {
	City          Text      `json:"city"`
	Venue         Text      `json:"venue"`
	Dates         []Text    `json:"dates"`
	MatchType     Text      `json:"match_type"`
	Season        Text      `json:"season"`
	Teams         []Text    `json:"teams"`
	Toss          Toss      `json:"toss"`
	Outcome       Outcome   `json:"outcome"`
	PlayerOfMatch []Text    `json:"player_of_match"`
	Officials     Officials `json:"officials"`
	Gender        Text      `json:"gender"`
}

type Toss struct {
	Winner   Text `json:"winner"`
	Decision Text `json:"decision"` // bat, field
}

type Outcome struct {
	Winner Text   `json:"winner"`
	By     Margin `json:"by"`
	Result Text   `json:"result"` // draw, tie, no result
	Method Text   `json:"method"` // D/L, VJD, Awarded
}

// Margin is the victory margin; at most one of Runs/Wickets is normally set
type Margin struct {
	Runs    Int `json:"runs"`
	Wickets Int `json:"wickets"`
	Innings Int `json:"innings"`
}

type Officials struct {
	Umpires        []Text `json:"umpires"`
	TVUmpires      []Text `json:"tv_umpires"`
	MatchReferees  []Text `json:"match_referees"`
	ReserveUmpires []Text `json:"reserve_umpires"`
}

// Roster is the slice of the info section that lists players by team
type Roster struct {
	Players TeamPlayers `json:"players"`
}

// Innings is one team's batting turn
type Innings struct {
	Team  Text   `json:"team"`
	Overs []Over `json:"overs"`
}

// Over is a group of deliveries; Number is zero-based in the source
type Over struct {
	Number     Int        `json:"over"`
	Deliveries []Delivery `json:"deliveries"`
}

// Delivery is one ball bowled
type Delivery struct {
	Batter     Text     `json:"batter"`
	NonStriker Text     `json:"non_striker"`
	Bowler     Text     `json:"bowler"`
	Runs       Runs     `json:"runs"`
	Extras     Extras   `json:"extras"`
	Wickets    []Wicket `json:"wickets"`
}

type Runs struct {
	Batter      Int  `json:"batter"`
	Extras      Int  `json:"extras"`
	Total       Int  `json:"total"`
	NonBoundary Flag `json:"non_boundary"`
}

// Extras breaks extras_runs down by category; values are boolean-ish
type Extras struct {
	Wides   Flag `json:"wides"`
	Byes    Flag `json:"byes"`
	Legbyes Flag `json:"legbyes"`
	Noballs Flag `json:"noballs"`
	Penalty Flag `json:"penalty"`
}

// Wicket is one dismissal event attached to a delivery
type Wicket struct {
	Kind      Text      `json:"kind"`
	PlayerOut Text      `json:"player_out"`
	Fielders  []Fielder `json:"fielders"`
}

type Fielder struct {
	Name       Text `json:"name"`
	Substitute Flag `json:"substitute"`
}

// DecodeDocument decodes the envelope of a match file
func DecodeDocument(data []byte) (*Document, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, err
	}
	return &Document{
		Meta:    fields["meta"],
		Info:    fields["info"],
		Innings: fields["innings"],
		keys:    len(fields),
	}, nil
}

// DecodeMeta decodes the meta section. An absent section yields the zero value.
func (d *Document) DecodeMeta() (Meta, error) {
	var meta Meta
	err := decodeSection(d.Meta, &meta)
	return meta, err
}

// DecodeInfo decodes the info section. An absent section yields the zero value.
func (d *Document) DecodeInfo() (Info, error) {
	var info Info
	err := decodeSection(d.Info, &info)
	return info, err
}

// DecodeRoster decodes only the players-by-team part of the info section
func (d *Document) DecodeRoster() (Roster, error) {
	var roster Roster
	err := decodeSection(d.Info, &roster)
	return roster, err
}

// DecodeInnings decodes the innings list. An absent list yields no innings.
func (d *Document) DecodeInnings() ([]Innings, error) {
	var innings []Innings
	err := decodeSection(d.Innings, &innings)
	return innings, err
}

// Empty reports a null or {} document. A document with only unknown keys
// is not empty; its sections decode as absent.
func (d *Document) Empty() bool {
	return d.keys == 0 && absent(d.Meta) && absent(d.Info) && absent(d.Innings)
}

func decodeSection(raw json.RawMessage, v any) error {
	if absent(raw) {
		return nil
	}
	return json.Unmarshal(raw, v)
}

func absent(raw json.RawMessage) bool {
	return len(raw) == 0 || string(raw) == "null"
}
