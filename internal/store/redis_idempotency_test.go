package store

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redismock/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MKhiriev/go-trip-keeper/models"
)

const testIdemKey = "idem:1:/sync/push:k"

func TestRedisIdempotencyStore_Reserve(t *testing.T) {
	pending, err := json.Marshal(models.StoredResponse{Pending: true, Fingerprint: "abc"})
	require.NoError(t, err)

	finished := models.StoredResponse{Fingerprint: "abc", Status: 200, ContentType: "application/json", Body: []byte(`{"success":true}`)}
	finishedRaw, err := json.Marshal(finished)
	require.NoError(t, err)

	tests := []struct {
		name         string
		setup        func(mock redismock.ClientMock)
		wantReserved bool
		wantCurrent  models.StoredResponse
		wantErr      bool
	}{
		{
			name: "free key is reserved",
			setup: func(mock redismock.ClientMock) {
				mock.ExpectSetNX(testIdemKey, string(pending), time.Minute).SetVal(true)
			},
			wantReserved: true,
		},
		{
			name: "taken key returns the stored response",
			setup: func(mock redismock.ClientMock) {
				mock.ExpectSetNX(testIdemKey, string(pending), time.Minute).SetVal(false)
				mock.ExpectGet(testIdemKey).SetVal(string(finishedRaw))
			},
			wantCurrent: finished,
		},
		{
			name: "taken key still pending",
			setup: func(mock redismock.ClientMock) {
				mock.ExpectSetNX(testIdemKey, string(pending), time.Minute).SetVal(false)
				mock.ExpectGet(testIdemKey).SetVal(string(pending))
			},
			wantCurrent: models.StoredResponse{Pending: true, Fingerprint: "abc"},
		},
		{
			name: "entry expired between commands is reserved on retry",
			setup: func(mock redismock.ClientMock) {
				mock.ExpectSetNX(testIdemKey, string(pending), time.Minute).SetVal(false)
				mock.ExpectGet(testIdemKey).RedisNil()
				mock.ExpectSetNX(testIdemKey, string(pending), time.Minute).SetVal(true)
			},
			wantReserved: true,
		},
		{
			name: "redis down",
			setup: func(mock redismock.ClientMock) {
				mock.ExpectSetNX(testIdemKey, string(pending), time.Minute).SetErr(errors.New("dial tcp"))
			},
			wantErr: true,
		},
		{
			name: "garbage stored",
			setup: func(mock redismock.ClientMock) {
				mock.ExpectSetNX(testIdemKey, string(pending), time.Minute).SetVal(false)
				mock.ExpectGet(testIdemKey).SetVal("not json")
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, mock := redismock.NewClientMock()
			tt.setup(mock)

			current, reserved, err := NewRedisIdempotencyStore(client).Reserve(testContext(), testIdemKey, "abc", time.Minute)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrIdempotencyStore)
			} else {
				require.NoError(t, err)
			}
			assert.Equal(t, tt.wantReserved, reserved)
			assert.Equal(t, tt.wantCurrent, current)
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestRedisIdempotencyStore_SaveResponse(t *testing.T) {
	resp := models.StoredResponse{Fingerprint: "abc", Status: 200, ContentType: "application/json", Body: []byte(`{}`)}
	raw, err := json.Marshal(resp)
	require.NoError(t, err)

	t.Run("overwrites the reservation", func(t *testing.T) {
		client, mock := redismock.NewClientMock()
		mock.ExpectSet(testIdemKey, string(raw), time.Hour).SetVal("OK")

		pendingResp := resp
		pendingResp.Pending = true
		err := NewRedisIdempotencyStore(client).SaveResponse(testContext(), testIdemKey, pendingResp, time.Hour)
		require.NoError(t, err)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("redis error", func(t *testing.T) {
		client, mock := redismock.NewClientMock()
		mock.ExpectSet(testIdemKey, string(raw), time.Hour).SetErr(errors.New("readonly"))

		err := NewRedisIdempotencyStore(client).SaveResponse(testContext(), testIdemKey, resp, time.Hour)
		require.ErrorIs(t, err, ErrIdempotencyStore)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestRedisIdempotencyStore_Release(t *testing.T) {
	t.Run("deleted", func(t *testing.T) {
		client, mock := redismock.NewClientMock()
		mock.ExpectDel(testIdemKey).SetVal(1)

		require.NoError(t, NewRedisIdempotencyStore(client).Release(testContext(), testIdemKey))
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("redis error", func(t *testing.T) {
		client, mock := redismock.NewClientMock()
		mock.ExpectDel(testIdemKey).SetErr(errors.New("dial tcp"))

		require.ErrorIs(t, NewRedisIdempotencyStore(client).Release(testContext(), testIdemKey), ErrIdempotencyStore)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}
