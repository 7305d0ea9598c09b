package rgs

import (
	"fmt"
	"net/url"
	"strings"
)

const (
	DeviceDesktop = "desktop"
	DeviceMobile  = "mobile"

	defaultLang = "en"
)

// Params são os parâmetros de lançamento, imutáveis depois do parse.
type Params struct {
	SessionID string
	Endpoint  string
	Lang      string
	Device    string
}

// ParseParams lê os pares chave/valor do contexto de lançamento.
// sessionID (com o alias legado session) e rgs_url são obrigatórios; a
// falta de qualquer um derruba pro modo offline em vez de virar erro de
// usuário. lang e device são opcionais com default en/desktop.
func ParseParams(query url.Values) (Params, error) {
	p := Params{Lang: defaultLang, Device: DeviceDesktop}

	p.SessionID = query.Get("sessionID")
	if p.SessionID == "" {
		p.SessionID = query.Get("session") // alias legado
	}
	if p.SessionID == "" {
		return Params{}, fmt.Errorf("%w: sessionID", ErrMissingLaunchParameter)
	}

	p.Endpoint = strings.TrimRight(query.Get("rgs_url"), "/")
	if p.Endpoint == "" {
		return Params{}, fmt.Errorf("%w: rgs_url", ErrMissingLaunchParameter)
	}

	if v := query.Get("lang"); v != "" {
		p.Lang = v
	}
	if v := query.Get("device"); v == DeviceMobile || v == DeviceDesktop {
		p.Device = v
	}
	return p, nil
}

// ParseLaunchQuery aceita a query string crua do lançamento.
func ParseLaunchQuery(raw string) (Params, error) {
	q, err := url.ParseQuery(raw)
	if err != nil {
		return Params{}, fmt.Errorf("%w: unparseable launch query", ErrMissingLaunchParameter)
	}
	return ParseParams(q)
}
