package testsupport_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/mFlorianW/rapid/internal/eventloop"
	"github.com/mFlorianW/rapid/internal/testsupport"
	"github.com/mFlorianW/rapid/internal/types"
)

func TestSampleSessionHasOneLap(t *testing.T) {
	t.Parallel()

	track := testsupport.SampleTrack("Spa")
	session := testsupport.SampleSession(t, track)
	require.Equal(t, 1, session.NumberOfLaps())
}

func TestOvalTrackUsesFinishAsStartline(t *testing.T) {
	t.Parallel()

	finish := types.Position{Latitude: 49.0, Longitude: 8.0}
	track := testsupport.OvalTrack("Oval", finish)
	require.Equal(t, finish, track.EffectiveStartline())
}

func TestPumpUntilReturnsOnceConditionTrue(t *testing.T) {
	t.Parallel()

	loop := eventloop.NewLoop()
	prop := eventloop.NewProperty(loop, 0)
	prop.Changed().Connect(func(int) {})

	go func() {
		time.Sleep(10 * time.Millisecond)
		prop.Set(1)
	}()

	testsupport.PumpUntil(t, loop, time.Second, func() bool { return prop.Get() == 1 })
	require.Equal(t, 1, prop.Get())
}
