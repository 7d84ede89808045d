package http

import (
	"encoding/json"
	"time"

	"github.com/velichkin/parley-server/internal/core"
	"github.com/velichkin/parley-server/internal/proto"
	"github.com/velichkin/parley-server/internal/store"
)

func inboundToCommand(inbound proto.Inbound) (*core.Command, *proto.Error, error) {
	switch inbound.Type {
	case proto.InboundTypeAuthenticate:
		var data proto.AuthenticateData
		if err := unmarshalData(inbound.Data, &data); err != nil {
			return nil, nil, err
		}
		if data.Token == "" {
			return nil, &proto.Error{Code: core.ErrCodeBadRequest, Msg: "token is required"}, nil
		}
		return &core.Command{Kind: core.CommandAuthenticate, Credential: data.Token}, nil, nil

	case proto.InboundTypeLogin:
		return &core.Command{Kind: core.CommandLogin}, nil, nil

	case proto.InboundTypeJoinRoom:
		var data proto.JoinRoomData
		if err := unmarshalData(inbound.Data, &data); err != nil {
			return nil, nil, err
		}
		if data.Room == "" {
			return nil, &proto.Error{Code: core.ErrCodeBadRequest, Msg: "room is required"}, nil
		}
		return &core.Command{Kind: core.CommandJoinRoom, Room: data.Room}, nil, nil

	case proto.InboundTypeSendMessage:
		var data proto.SendMessageData
		if err := unmarshalData(inbound.Data, &data); err != nil {
			return nil, nil, err
		}
		return &core.Command{
			Kind:    core.CommandSendMessage,
			Body:    data.Content,
			MsgKind: store.MessageKind(data.Kind),
			FileRef: data.FileRef,
		}, nil, nil

	case proto.InboundTypePrivateMessage:
		var data proto.PrivateMessageData
		if err := unmarshalData(inbound.Data, &data); err != nil {
			return nil, nil, err
		}
		if data.To == "" {
			return nil, &proto.Error{Code: core.ErrCodeBadRequest, Msg: "recipient is required"}, nil
		}
		return &core.Command{
			Kind:    core.CommandPrivateMessage,
			To:      data.To,
			Body:    data.Content,
			MsgKind: store.MessageKind(data.Kind),
			FileRef: data.FileRef,
		}, nil, nil

	case proto.InboundTypeTyping:
		var data proto.TypingData
		if err := unmarshalData(inbound.Data, &data); err != nil {
			return nil, nil, err
		}
		return &core.Command{Kind: core.CommandTyping, IsTyping: data.IsTyping}, nil, nil

	default:
		return nil, &proto.Error{Code: "invalid_message", Msg: "unknown message type"}, nil
	}
}

// unmarshalData tolerates a missing data field for payload-less events.
func unmarshalData(raw json.RawMessage, v any) error {
	if len(raw) == 0 {
		return nil
	}
	return json.Unmarshal(raw, v)
}

func outboundFromEvent(event *core.Event) proto.Outbound {
	switch event.Kind {
	case core.EventChatHistory:
		messages := make([]proto.EventMessage, 0, len(event.Messages))
		for _, msg := range event.Messages {
			messages = append(messages, eventMessage(msg))
		}
		return proto.Outbound{
			Type: proto.OutboundTypeChatHistory,
			Data: proto.EventChatHistory{Room: event.Room.String(), Messages: messages},
		}

	case core.EventMessage:
		return proto.Outbound{Type: proto.OutboundTypeMessage, Data: eventMessage(event.Message)}

	case core.EventPrivateMessage:
		return proto.Outbound{Type: proto.OutboundTypePrivateMessage, Data: eventMessage(event.Message)}

	case core.EventUpdateUsers:
		users := make([]proto.EventUserStatus, 0, len(event.Users))
		for _, u := range event.Users {
			status := "offline"
			if u.Online {
				status = "online"
			}
			users = append(users, proto.EventUserStatus{Username: u.Username, Status: status})
		}
		return proto.Outbound{Type: proto.OutboundTypeUpdateUsers, Data: users}

	case core.EventUserTyping:
		return proto.Outbound{
			Type: proto.OutboundTypeUserTyping,
			Data: proto.EventUserTyping{Username: event.Typing.Username, IsTyping: event.Typing.IsTyping},
		}

	case core.EventError:
		if event.Error == nil {
			return proto.Outbound{Type: proto.OutboundTypeError, Error: &proto.Error{Code: "unknown", Msg: "unknown error"}}
		}
		return proto.Outbound{
			Type:  proto.OutboundTypeError,
			Error: &proto.Error{Code: event.Error.Code, Msg: event.Error.Message},
		}

	default:
		return proto.Outbound{Type: proto.OutboundTypeMessage}
	}
}

func eventMessage(m *core.Message) proto.EventMessage {
	return proto.EventMessage{
		ID:        m.ID,
		Sender:    m.Sender,
		Recipient: m.Recipient,
		Room:      m.Room.String(),
		Kind:      string(m.Kind),
		Content:   m.Body,
		FileRef:   m.FileRef,
		System:    m.System,
		Timestamp: m.CreatedAt.Format(time.RFC3339),
	}
}
