package runtime

import (
	"fmt"

	"github.com/aowss/orderbook/pkg/matchcore"
)

var orderTypeByName = map[string]matchcore.OrderType{
	"gtc":        matchcore.OrderTypeGTC,
	"ioc":        matchcore.OrderTypeIOC,
	"ioc_budget": matchcore.OrderTypeIOCBudget,
	"fok":        matchcore.OrderTypeFOK,
	"fok_budget": matchcore.OrderTypeFOKBudget,
}

func actionByName(name string) matchcore.Action {
	if name == "bid" {
		return matchcore.ActionBid
	}
	return matchcore.ActionAsk
}

// encodeCommand translates a validated commandRequest into the wire buffer
// Dispatch expects (spec.md §4.2).
func encodeCommand(req commandRequest, uid uint64) ([]byte, error) {
	switch req.Opcode {
	case "place":
		ot, ok := orderTypeByName[req.OrderType]
		if !ok {
			return nil, fmt.Errorf("unknown order_type %q", req.OrderType)
		}
		buf := make([]byte, 47)
		buf[0] = uint8(matchcore.OpPlace)
		w := matchcore.NewWriter(buf, 1)
		w.AppendU64(uid)
		w.AppendU64(req.OrderID)
		w.AppendI64(req.Price)
		w.AppendI64(req.ReserveBidPrice)
		w.AppendI64(req.Size)
		w.AppendU32(0) // user_cookie: unused over HTTP, correlation uses request ids instead
		w.AppendU8(uint8(actionByName(req.Action)))
		w.AppendU8(uint8(ot))
		return buf, nil

	case "cancel":
		buf := make([]byte, 17)
		buf[0] = uint8(matchcore.OpCancel)
		w := matchcore.NewWriter(buf, 1)
		w.AppendU64(uid)
		w.AppendU64(req.OrderID)
		return buf, nil

	case "reduce":
		buf := make([]byte, 25)
		buf[0] = uint8(matchcore.OpReduce)
		w := matchcore.NewWriter(buf, 1)
		w.AppendU64(uid)
		w.AppendU64(req.OrderID)
		w.AppendI64(req.Size)
		return buf, nil

	case "move":
		buf := make([]byte, 25)
		buf[0] = uint8(matchcore.OpMove)
		w := matchcore.NewWriter(buf, 1)
		w.AppendU64(uid)
		w.AppendU64(req.OrderID)
		w.AppendI64(req.Price)
		return buf, nil

	default:
		return nil, fmt.Errorf("unknown opcode %q", req.Opcode)
	}
}

// decodeResponse parses buf per the shape matching opcode's response
// carries (PLACE alone has a cookie field in its header).
func decodeResponse(opcode string, buf []byte) matchcore.CommandResponse {
	if opcode == "place" {
		return matchcore.DecodePlaceResponse(buf)
	}
	return matchcore.DecodeOrderResponse(buf)
}
