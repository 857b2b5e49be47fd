package remote

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/bubbletea-slz/teahouse/internal/entity"
)

// The backend speaks an upper-snake Portuguese vocabulary; everything is
// translated to the internal lower-case hyphenated enums at this boundary.

var teaToWire = map[entity.TeaType]string{
	entity.TeaGreen:           "CHA_VERDE",
	entity.TeaMangoStrawberry: "MANGA_MORANGO",
	entity.TeaMilk:            "MILK_TEA",
}

var sizeToWire = map[entity.Size]string{
	entity.SizeSmall:  "PEQUENO",
	entity.SizeMedium: "MEDIO",
	entity.SizeLarge:  "GRANDE",
}

var statusToWire = map[entity.Status]string{
	entity.StatusPending:   "PENDENTE",
	entity.StatusPreparing: "PREPARANDO",
	entity.StatusReady:     "PRONTO",
	entity.StatusDelivered: "ENTREGUE",
	entity.StatusCanceled:  "CANCELADO",
}

var (
	teaFromWire    = invert(teaToWire)
	sizeFromWire   = invert(sizeToWire)
	statusFromWire = invert(statusToWire)
)

func invert[K comparable, V comparable](m map[K]V) map[V]K {
	out := make(map[V]K, len(m))
	for k, v := range m {
		out[v] = k
	}
	return out
}

// wireOrder is the order document as the backend returns it.
type wireOrder struct {
	ID          int64     `json:"id"`
	IDCompra    string    `json:"idCompra"`
	Cliente     string    `json:"cliente"`
	TipoCha     string    `json:"tipoCha"`
	Tamanho     string    `json:"tamanho"`
	Observacoes string    `json:"observacoes"`
	Preco       float64   `json:"preco"`
	Status      string    `json:"status"`
	Data        time.Time `json:"data"`
	DataStatus  time.Time `json:"dataStatus"`
}

// createRequest is the POST /pedidos body.
type createRequest struct {
	Cliente     string  `json:"cliente"`
	TipoCha     string  `json:"tipoCha"`
	Tamanho     string  `json:"tamanho"`
	Observacoes string  `json:"observacoes"`
	Preco       float64 `json:"preco"`
}

// updateRequest is the PUT /pedidos/{id} body; a full replace of the
// editable fields.
type updateRequest struct {
	Cliente     string `json:"cliente"`
	TipoCha     string `json:"tipoCha"`
	Tamanho     string `json:"tamanho"`
	Observacoes string `json:"observacoes"`
}

// wireStatistics is the GET /pedidos/estatisticas payload.
type wireStatistics struct {
	TotalPedidos int     `json:"totalPedidos"`
	PedidosHoje  int     `json:"pedidosHoje"`
	ReceitaTotal float64 `json:"receitaTotal"`
	ReceitaHoje  float64 `json:"receitaHoje"`
}

// errorResponse carries the backend's failure message when present.
type errorResponse struct {
	Message string `json:"message"`
}

func (w wireOrder) toEntity() (entity.Order, error) {
	tea, ok := teaFromWire[w.TipoCha]
	if !ok {
		return entity.Order{}, fmt.Errorf("unknown wire tea type: %q", w.TipoCha)
	}
	size, ok := sizeFromWire[w.Tamanho]
	if !ok {
		return entity.Order{}, fmt.Errorf("unknown wire size: %q", w.Tamanho)
	}
	status, ok := statusFromWire[w.Status]
	if !ok {
		return entity.Order{}, fmt.Errorf("unknown wire status: %q", w.Status)
	}

	return entity.Order{
		ID:              w.ID,
		PurchaseCode:    w.IDCompra,
		Client:          w.Cliente,
		TeaType:         tea,
		Size:            size,
		Notes:           w.Observacoes,
		Price:           decimal.NewFromFloat(w.Preco),
		Status:          status,
		CreatedAt:       w.Data,
		StatusChangedAt: w.DataStatus,
	}, nil
}
