package ws

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/mitchellh/mapstructure"

	"wizard-game/dto"
	"wizard-game/engine"
	"wizard-game/entities"
	"wizard-game/service"
)

// errBadMessage marks a message whose fields could not be read.
var errBadMessage = errors.New("bad message")

func errorCode(err error) string {
	if errors.Is(err, errBadMessage) {
		return "bad_message"
	}
	return service.ErrorCode(err)
}

// messageHandler applies one inbound message. A returned error goes back to
// the sender only; accepted moves reach everyone through the broadcast.
type messageHandler func(h *Hub, roomID string, cl *client, msgMap map[string]interface{}) error

var messageHandlers = map[string]messageHandler{
	"bid":          handleBidMessage,
	"choose_trump": handleChooseTrumpMessage,
	"play_card":    handlePlayCardMessage,
	"forfeit":      handleForfeitMessage,
	"sync":         handleSyncMessage,
}

func decode(msgMap map[string]interface{}, out interface{}) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		TagName:          "json",
		WeaklyTypedInput: true,
	})
	if err != nil {
		return err
	}
	if err := decoder.Decode(msgMap); err != nil {
		return fmt.Errorf("%w: %v", errBadMessage, err)
	}
	return nil
}

func handleBidMessage(h *Hub, roomID string, cl *client, msgMap map[string]interface{}) error {
	value, ok := msgMap["value"]
	if !ok {
		return fmt.Errorf("%w: value is required", errBadMessage)
	}
	// the decoder would truncate 0.9 to 0
	if v, isNum := value.(float64); isNum && v != math.Trunc(v) {
		return fmt.Errorf("%w: %v is not a whole number", engine.ErrInvalidBid, v)
	}
	var msg dto.BidMessage
	if err := decode(msgMap, &msg); err != nil {
		return err
	}
	return h.rooms.SubmitBid(context.Background(), roomID, cl.PlayerID, msg.Value)
}

func handleChooseTrumpMessage(h *Hub, roomID string, cl *client, msgMap map[string]interface{}) error {
	var msg dto.ChooseTrumpMessage
	if err := decode(msgMap, &msg); err != nil {
		return err
	}
	suit, err := entities.ParseSuit(msg.Suit)
	if err != nil {
		return fmt.Errorf("%w: %v", errBadMessage, err)
	}
	return h.rooms.ChooseTrump(context.Background(), roomID, cl.PlayerID, suit)
}

func handlePlayCardMessage(h *Hub, roomID string, cl *client, msgMap map[string]interface{}) error {
	var msg dto.PlayCardMessage
	if err := decode(msgMap, &msg); err != nil {
		return err
	}
	card, err := entities.ParseCard(msg.Card)
	if err != nil {
		return fmt.Errorf("%w: %v", errBadMessage, err)
	}
	return h.rooms.PlayCard(context.Background(), roomID, cl.PlayerID, card)
}

func handleForfeitMessage(h *Hub, roomID string, cl *client, _ map[string]interface{}) error {
	_, err := h.rooms.ForfeitTurn(context.Background(), roomID, cl.PlayerID)
	return err
}

func handleSyncMessage(h *Hub, roomID string, cl *client, _ map[string]interface{}) error {
	msg, err := h.stateFor(roomID, cl.PlayerID)
	if err != nil {
		return err
	}
	return cl.send(msg)
}
