// Package codec encodes protocol messages as JSON text frames or as
// protobuf binary frames built on structpb.
package codec

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/Cryborg/sugoroku/internal/protocol"
)

// Format 帧编码格式
type Format string

const (
	FormatJSON   Format = "json"
	FormatBinary Format = "binary"
)

// ParseFormat returns FormatBinary for "binary" and FormatJSON otherwise.
func ParseFormat(s string) Format {
	if Format(s) == FormatBinary {
		return FormatBinary
	}
	return FormatJSON
}

// ErrInvalidMessage is returned for frames without a message type.
var ErrInvalidMessage = errors.New("codec: invalid message")

const (
	fieldType    = "type"
	fieldPayload = "payload"
)

// NewMessage 创建消息
func NewMessage(t protocol.MessageType, payload any) (*protocol.Message, error) {
	msg := &protocol.Message{Type: t}
	if payload == nil {
		return msg, nil
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal %s payload: %w", t, err)
	}
	msg.Payload = data
	return msg, nil
}

// MustNewMessage is NewMessage for payloads that always marshal.
func MustNewMessage(t protocol.MessageType, payload any) *protocol.Message {
	msg, err := NewMessage(t, payload)
	if err != nil {
		panic(err)
	}
	return msg
}

// NewErrorMessage 创建错误消息
func NewErrorMessage(code int) *protocol.Message {
	return NewErrorMessageWithText(code, protocol.ErrorMessages[code])
}

// NewErrorMessageWithText 创建带自定义文本的错误消息
func NewErrorMessageWithText(code int, text string) *protocol.Message {
	return MustNewMessage(protocol.MsgError, protocol.ErrorPayload{Code: code, Message: text})
}

// ParsePayload decodes the payload of msg into a T. A message without
// payload yields the zero T.
func ParsePayload[T any](msg *protocol.Message) (*T, error) {
	var v T
	if len(msg.Payload) == 0 {
		return &v, nil
	}
	if err := json.Unmarshal(msg.Payload, &v); err != nil {
		return nil, fmt.Errorf("parse %s payload: %w", msg.Type, err)
	}
	return &v, nil
}

// Encode 序列化消息
func Encode(msg *protocol.Message, f Format) ([]byte, error) {
	if f == FormatBinary {
		return encodeBinary(msg)
	}

	buf := GetBuffer()
	defer PutBuffer(buf)
	if err := json.NewEncoder(buf).Encode(msg); err != nil {
		return nil, fmt.Errorf("encode %s: %w", msg.Type, err)
	}
	return bytes.Clone(bytes.TrimSuffix(buf.Bytes(), []byte("\n"))), nil
}

// Decode 反序列化消息，调用方用完后可通过 PutMessage 归还
func Decode(data []byte, f Format) (*protocol.Message, error) {
	if f == FormatBinary {
		return decodeBinary(data)
	}

	msg := GetMessage()
	if err := json.Unmarshal(data, msg); err != nil {
		PutMessage(msg)
		return nil, fmt.Errorf("%w: %v", ErrInvalidMessage, err)
	}
	if msg.Type == "" {
		PutMessage(msg)
		return nil, ErrInvalidMessage
	}
	return msg, nil
}

func encodeBinary(msg *protocol.Message) ([]byte, error) {
	s := GetStruct()
	defer PutStruct(s)

	s.Fields = map[string]*structpb.Value{
		fieldType: structpb.NewStringValue(string(msg.Type)),
	}
	if len(msg.Payload) > 0 {
		payload := &structpb.Value{}
		if err := protojson.Unmarshal(msg.Payload, payload); err != nil {
			return nil, fmt.Errorf("convert %s payload: %w", msg.Type, err)
		}
		s.Fields[fieldPayload] = payload
	}

	data, err := proto.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", msg.Type, err)
	}
	return data, nil
}

func decodeBinary(data []byte) (*protocol.Message, error) {
	s := GetStruct()
	defer PutStruct(s)

	if err := proto.Unmarshal(data, s); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidMessage, err)
	}
	typ := s.GetFields()[fieldType].GetStringValue()
	if typ == "" {
		return nil, ErrInvalidMessage
	}

	msg := GetMessage()
	msg.Type = protocol.MessageType(typ)
	if payload, ok := s.GetFields()[fieldPayload]; ok {
		raw, err := protojson.Marshal(payload)
		if err != nil {
			PutMessage(msg)
			return nil, fmt.Errorf("%w: %v", ErrInvalidMessage, err)
		}
		msg.Payload = raw
	}
	return msg, nil
}
