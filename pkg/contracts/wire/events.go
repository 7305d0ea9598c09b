package wire

import "encoding/json"

// Entradas tipadas da lista de eventos do play. A primeira entrada é
// sempre a revelação do tabuleiro; seguem zero ou mais vitórias e no
// máximo uma entrada de scatter.

type Event struct {
	Type string          `json:"type"` // board | win | scatter
	Data json.RawMessage `json:"data"`
}

const (
	EventBoard   = "board"
	EventWin     = "win"
	EventScatter = "scatter"
)

type BoardData struct {
	Symbols [][]string `json:"symbols"` // 5 colunas (rolos) x 4 linhas
}

type WinData struct {
	Symbol string `json:"symbol"`
	Kind   int    `json:"kind"`   // comprimento da combinação: 3, 4 ou 5
	Ways   int64  `json:"ways"`
	Payout int64  `json:"payout"` // micros
}

type ScatterData struct {
	Count      int   `json:"count"`
	Multiplier int64 `json:"multiplier"`
	Award      int64 `json:"award"` // micros
}

func NewBoardEvent(symbols [][]string) Event {
	b, _ := json.Marshal(BoardData{Symbols: symbols})
	return Event{Type: EventBoard, Data: b}
}

func NewWinEvent(w WinData) Event {
	b, _ := json.Marshal(w)
	return Event{Type: EventWin, Data: b}
}

func NewScatterEvent(s ScatterData) Event {
	b, _ := json.Marshal(s)
	return Event{Type: EventScatter, Data: b}
}
