package messaging_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"progress-service/internal/attempt"
	"progress-service/internal/logger"
	"progress-service/internal/messaging"
	"progress-service/internal/metrics"
	"progress-service/testing/testnats"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProducer_Shared(t *testing.T) {
	nc := testnats.SetupSharedNATS(t)

	producer, err := messaging.NewProducer(nc.URL, "trainer.attempts", logger.NewDiscard(), metrics.NewMock())
	require.NoError(t, err)
	t.Cleanup(func() { _ = producer.Close() })

	t.Run("PublishAttemptRecorded", func(t *testing.T) {
		msgs := nc.Subscribe(t, "trainer.attempts")

		event := attempt.RecordedEvent{
			AttemptID: 42, UserID: 7, ExerciseType: attempt.DefaultExerciseType,
			Correct: 9, Wrong: 1, Points: 95, AvgTime: 1.5,
			CompletedAt: time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC),
		}
		require.NoError(t, producer.PublishAttemptRecorded(context.Background(), event))

		select {
		case msg := <-msgs:
			assert.Equal(t, "42", msg.Header.Get(messaging.HeaderAttemptID))

			var got attempt.RecordedEvent
			require.NoError(t, json.Unmarshal(msg.Data, &got))
			assert.Equal(t, event, got)
		case <-time.After(5 * time.Second):
			t.Fatal("no message received")
		}
	})

	t.Run("Ping", func(t *testing.T) {
		assert.NoError(t, producer.Ping(context.Background()))
	})
}
