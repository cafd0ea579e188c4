package live

import (
	"context"
	"log"
	"sync"
)

type MediaKind string

const (
	MediaAudio MediaKind = "audio"
	MediaVideo MediaKind = "video"
)

// Track is a capture handle published to the media transport. Close releases
// the underlying device so the OS in-use indicator clears.
type Track interface {
	Kind() MediaKind
	SetEnabled(enabled bool) error
	Close() error
}

// ScreenTrack additionally reports the browser's native "stop sharing"
// affordance through OnEnded.
type ScreenTrack interface {
	Track
	OnEnded(fn func())
}

// Transport is the opaque media session (join/leave/publish/subscribe). The
// concrete RTC vendor binding lives outside this repo.
type Transport interface {
	Join(ctx context.Context, channel, token, uid string) error
	Leave() error
	Publish(tracks ...Track) error
	Unpublish(tracks ...Track) error
	Subscribe(remoteUID string, kind MediaKind) error
	Unsubscribe(remoteUID string, kind MediaKind) error
}

// DeviceSource acquires local capture devices.
type DeviceSource interface {
	OpenMicrophone() (Track, error)
	OpenCamera() (Track, error)
	OpenScreen() (ScreenTrack, error)
}

// TrackManager drives one client's camera, microphone and screen-share
// lifecycle against the transport. Screen-share and camera video are
// mutually exclusive on the publish side; the camera capture handle is kept
// while sharing so it can resume without re-acquiring the device.
type TrackManager struct {
	transport Transport
	devices   DeviceSource
	log       *log.Logger

	mu       sync.Mutex
	joined   bool
	mic      Track
	camera   Track
	screen   ScreenTrack
	remote   map[string]map[MediaKind]bool
}

func NewTrackManager(transport Transport, devices DeviceSource, logger *log.Logger) *TrackManager {
	return &TrackManager{
		transport: transport,
		devices:   devices,
		log:       logger,
		remote:    make(map[string]map[MediaKind]bool),
	}
}

// Join acquires microphone and camera, joins the channel and publishes both.
// A camera or microphone that cannot be acquired is skipped with a log entry
// rather than failing the join.
func (m *TrackManager) Join(ctx context.Context, channel, token, uid string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.joined {
		return nil
	}

	if m.mic == nil {
		mic, err := m.devices.OpenMicrophone()
		if err != nil {
			m.log.Printf("microphone unavailable: %v", err)
		} else {
			m.mic = mic
		}
	}
	if m.camera == nil {
		camera, err := m.devices.OpenCamera()
		if err != nil {
			m.log.Printf("camera unavailable: %v", err)
		} else {
			m.camera = camera
		}
	}

	if err := m.transport.Join(ctx, channel, token, uid); err != nil {
		return err
	}
	m.joined = true

	var publish []Track
	if m.mic != nil {
		publish = append(publish, m.mic)
	}
	if m.camera != nil {
		publish = append(publish, m.camera)
	}
	if len(publish) > 0 {
		if err := m.transport.Publish(publish...); err != nil {
			return err
		}
	}
	return nil
}

// EnableCamera re-acquires and publishes camera video. Calling it while a
// camera handle already exists is a no-op, so the device is never opened
// twice.
func (m *TrackManager) EnableCamera() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.camera != nil {
		return nil
	}

	camera, err := m.devices.OpenCamera()
	if err != nil {
		return err
	}
	m.camera = camera

	// While screen-sharing the camera stays unpublished until the share ends.
	if m.joined && m.screen == nil {
		return m.transport.Publish(camera)
	}
	return nil
}

// DisableCamera unpublishes and releases the camera. Disabling an already
// disabled camera is a no-op.
func (m *TrackManager) DisableCamera() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.camera == nil {
		return nil
	}

	if m.joined && m.screen == nil {
		if err := m.transport.Unpublish(m.camera); err != nil {
			return err
		}
	}
	err := m.camera.Close()
	m.camera = nil
	return err
}

// SetMicrophoneEnabled mutes or unmutes the microphone without releasing the
// capture handle.
func (m *TrackManager) SetMicrophoneEnabled(enabled bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.mic == nil {
		return nil
	}
	return m.mic.SetEnabled(enabled)
}

// StartScreenShare publishes the screen track in place of camera video. The
// camera capture handle is retained for quick resume. The transport's
// track-ended signal (the browser's own stop button) routes back into
// StopScreenShare.
func (m *TrackManager) StartScreenShare() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.screen != nil {
		return nil
	}

	screen, err := m.devices.OpenScreen()
	if err != nil {
		return err
	}
	screen.OnEnded(func() {
		if err := m.StopScreenShare(); err != nil {
			m.log.Printf("stop screen share after track ended: %v", err)
		}
	})

	if m.joined && m.camera != nil {
		if err := m.transport.Unpublish(m.camera); err != nil {
			screen.Close()
			return err
		}
	}
	if m.joined {
		if err := m.transport.Publish(screen); err != nil {
			screen.Close()
			if m.camera != nil {
				m.transport.Publish(m.camera)
			}
			return err
		}
	}
	m.screen = screen
	return nil
}

// StopScreenShare reverses StartScreenShare: the screen track is unpublished
// and released, and camera video is republished if it was active before the
// share. The published set returns to its pre-share composition.
func (m *TrackManager) StopScreenShare() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.screen == nil {
		return nil
	}

	if m.joined {
		if err := m.transport.Unpublish(m.screen); err != nil {
			m.log.Printf("unpublish screen: %v", err)
		}
	}
	err := m.screen.Close()
	m.screen = nil

	if m.joined && m.camera != nil {
		if pubErr := m.transport.Publish(m.camera); pubErr != nil {
			return pubErr
		}
	}
	return err
}

// Leave releases every held capture handle before leaving the transport, in
// the order camera, microphone, screen, so no device handle outlives the
// session on any exit path.
func (m *TrackManager) Leave() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.camera != nil {
		if err := m.camera.Close(); err != nil {
			m.log.Printf("close camera: %v", err)
		}
		m.camera = nil
	}
	if m.mic != nil {
		if err := m.mic.Close(); err != nil {
			m.log.Printf("close microphone: %v", err)
		}
		m.mic = nil
	}
	if m.screen != nil {
		if err := m.screen.Close(); err != nil {
			m.log.Printf("close screen: %v", err)
		}
		m.screen = nil
	}

	m.remote = make(map[string]map[MediaKind]bool)

	if !m.joined {
		return nil
	}
	m.joined = false
	return m.transport.Leave()
}

// HandleRemotePublished subscribes to a remote feed the moment the transport
// signals the media type is available.
func (m *TrackManager) HandleRemotePublished(remoteUID string, kind MediaKind) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.transport.Subscribe(remoteUID, kind); err != nil {
		return err
	}
	if m.remote[remoteUID] == nil {
		m.remote[remoteUID] = make(map[MediaKind]bool)
	}
	m.remote[remoteUID][kind] = true
	return nil
}

// HandleRemoteUnpublished drops the feed for a media type the remote side
// stopped publishing.
func (m *TrackManager) HandleRemoteUnpublished(remoteUID string, kind MediaKind) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if kinds, ok := m.remote[remoteUID]; ok {
		delete(kinds, kind)
		if len(kinds) == 0 {
			delete(m.remote, remoteUID)
		}
	}
}

// HandleRemoteLeft removes every feed of a departed participant.
func (m *TrackManager) HandleRemoteLeft(remoteUID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.remote, remoteUID)
}

// RemoteFeeds reports the currently subscribed remote video feeds.
func (m *TrackManager) RemoteFeeds() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	feeds := make([]string, 0, len(m.remote))
	for uid, kinds := range m.remote {
		if kinds[MediaVideo] {
			feeds = append(feeds, uid)
		}
	}
	return feeds
}

// PublishedTracks reports the local tracks currently on the wire, in the
// order mic, camera, screen.
func (m *TrackManager) PublishedTracks() []Track {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.joined {
		return nil
	}
	var tracks []Track
	if m.mic != nil {
		tracks = append(tracks, m.mic)
	}
	if m.camera != nil && m.screen == nil {
		tracks = append(tracks, m.camera)
	}
	if m.screen != nil {
		tracks = append(tracks, m.screen)
	}
	return tracks
}

// GridLayout derives the video grid dimensions from the participant count.
func GridLayout(participants int) (cols, rows int) {
	cols = 2
	if participants > 4 {
		cols = 3
	}
	rows = 1
	if participants > 2 {
		rows = 2
	}
	return cols, rows
}
