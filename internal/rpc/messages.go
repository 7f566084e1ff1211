package rpc

import "google.golang.org/protobuf/encoding/protowire"

// json tags name fields in validation errors.

type PingRequest struct{}

func (m *PingRequest) appendWire(b []byte) []byte                            { return b }
func (m *PingRequest) setField(protowire.Number, protowire.Type, []byte) int { return 0 }

type PingResponse struct {
	Status string `json:"status"` // 1
}

func (m *PingResponse) appendWire(b []byte) []byte {
	return appendString(b, 1, m.Status)
}

func (m *PingResponse) setField(num protowire.Number, typ protowire.Type, b []byte) int {
	if num == 1 {
		return consumeString(typ, b, &m.Status)
	}
	return 0
}

type RegisterUserRequest struct {
	Email       string `json:"email" validate:"required,email,max=100"`             // 1
	DisplayName string `json:"displayName,omitempty" validate:"max=50"`             // 2
	Password    string `json:"password" validate:"required,minbytes=8,maxbytes=72"` // 3
}

func (m *RegisterUserRequest) appendWire(b []byte) []byte {
	b = appendString(b, 1, m.Email)
	b = appendString(b, 2, m.DisplayName)
	return appendString(b, 3, m.Password)
}

func (m *RegisterUserRequest) setField(num protowire.Number, typ protowire.Type, b []byte) int {
	switch num {
	case 1:
		return consumeString(typ, b, &m.Email)
	case 2:
		return consumeString(typ, b, &m.DisplayName)
	case 3:
		return consumeString(typ, b, &m.Password)
	}
	return 0
}

type RegisterUserResponse struct {
	ID    string `json:"id"`    // 1
	Email string `json:"email"` // 2
}

func (m *RegisterUserResponse) appendWire(b []byte) []byte {
	b = appendString(b, 1, m.ID)
	return appendString(b, 2, m.Email)
}

func (m *RegisterUserResponse) setField(num protowire.Number, typ protowire.Type, b []byte) int {
	switch num {
	case 1:
		return consumeString(typ, b, &m.ID)
	case 2:
		return consumeString(typ, b, &m.Email)
	}
	return 0
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email,max=100"`  // 1
	Password string `json:"password" validate:"required,maxbytes=72"` // 2
}

func (m *LoginRequest) appendWire(b []byte) []byte {
	b = appendString(b, 1, m.Email)
	return appendString(b, 2, m.Password)
}

func (m *LoginRequest) setField(num protowire.Number, typ protowire.Type, b []byte) int {
	switch num {
	case 1:
		return consumeString(typ, b, &m.Email)
	case 2:
		return consumeString(typ, b, &m.Password)
	}
	return 0
}

type LoginResponse struct {
	AccessToken string `json:"accessToken"` // 1
	TokenType   string `json:"tokenType"`   // 2
	ExpiresAt   int64  `json:"expiresAt"`   // 3, unix seconds
}

func (m *LoginResponse) appendWire(b []byte) []byte {
	b = appendString(b, 1, m.AccessToken)
	b = appendString(b, 2, m.TokenType)
	return appendInt64(b, 3, m.ExpiresAt)
}

func (m *LoginResponse) setField(num protowire.Number, typ protowire.Type, b []byte) int {
	switch num {
	case 1:
		return consumeString(typ, b, &m.AccessToken)
	case 2:
		return consumeString(typ, b, &m.TokenType)
	case 3:
		return consumeInt64(typ, b, &m.ExpiresAt)
	}
	return 0
}

type WhoAmIRequest struct{}

func (m *WhoAmIRequest) appendWire(b []byte) []byte                            { return b }
func (m *WhoAmIRequest) setField(protowire.Number, protowire.Type, []byte) int { return 0 }

type WhoAmIResponse struct {
	Email       string `json:"email"`       // 1
	DisplayName string `json:"displayName"` // 2
}

func (m *WhoAmIResponse) appendWire(b []byte) []byte {
	b = appendString(b, 1, m.Email)
	return appendString(b, 2, m.DisplayName)
}

func (m *WhoAmIResponse) setField(num protowire.Number, typ protowire.Type, b []byte) int {
	switch num {
	case 1:
		return consumeString(typ, b, &m.Email)
	case 2:
		return consumeString(typ, b, &m.DisplayName)
	}
	return 0
}
