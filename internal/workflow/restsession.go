package workflow

import (
	"sync"

	"github.com/mFlorianW/rapid/internal/eventloop"
	"github.com/mFlorianW/rapid/internal/restclient"
	"github.com/mFlorianW/rapid/internal/rlog"
	"github.com/mFlorianW/rapid/internal/types"
)

var restSessionLog = rlog.For("workflow.restsession")

// DownloadResult is the outcome of a REST download, collapsing
// restclient.CallResult down to the two states callers of this workflow
// care about.
type DownloadResult int

const (
	// DownloadOk means the call succeeded and its data was parsed.
	DownloadOk DownloadResult = iota
	// DownloadError means the call failed transport-side, returned a
	// non-2xx status, or the body failed to parse.
	DownloadError
)

// SessionDownloadFinished is the payload of SessionDownloadFinished and
// SessionMetadataDownloadFinished: which index finished, and how.
type SessionDownloadFinished struct {
	Index  uint64
	Result DownloadResult
}

// RestSessionManagementWorkflow manages index-based session download over
// REST: fetching the session count, downloading individual sessions and
// session metadata, and bulk-downloading all metadata. Grounded on
// RestSessionManagementWorkflow.cpp/.hpp.
type RestSessionManagementWorkflow struct {
	client *restclient.RestClient

	mu              sync.Mutex
	sessionCount    uint64
	sessions        map[uint64]types.SessionData
	sessionMetadata map[uint64]types.SessionMeta

	fetchCountCache       map[*restclient.RestCall]struct{}
	downloadSessionCache  map[*restclient.RestCall]uint64
	downloadMetadataCache map[*restclient.RestCall]uint64

	// SessionCountFetched fires once fetchSessionCount's call completes.
	SessionCountFetched eventloop.Signal[DownloadResult]
	// SessionDownloadFinished fires once a downloadSession call completes.
	SessionDownloadFinished eventloop.Signal[SessionDownloadFinished]
	// SessionMetadataDownloadFinished fires once a downloadSessionMetadata
	// call completes (including each one triggered by DownloadAllSessionMetadata).
	SessionMetadataDownloadFinished eventloop.Signal[SessionDownloadFinished]
}

// NewRestSessionManagementWorkflow constructs a workflow issuing calls
// through client.
func NewRestSessionManagementWorkflow(client *restclient.RestClient) *RestSessionManagementWorkflow {
	return &RestSessionManagementWorkflow{
		client:                client,
		sessions:              map[uint64]types.SessionData{},
		sessionMetadata:       map[uint64]types.SessionMeta{},
		fetchCountCache:       map[*restclient.RestCall]struct{}{},
		downloadSessionCache:  map[*restclient.RestCall]uint64{},
		downloadMetadataCache: map[*restclient.RestCall]uint64{},
	}
}

// GetSessionCount returns the session count learned from the last
// successful FetchSessionCount.
func (w *RestSessionManagementWorkflow) GetSessionCount() uint64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.sessionCount
}

// FetchSessionCount issues GET /sessions; SessionCountFetched fires on
// completion.
func (w *RestSessionManagementWorkflow) FetchSessionCount() {
	call := w.client.Execute(restclient.GetSessionCountRequest())
	w.mu.Lock()
	w.fetchCountCache[call] = struct{}{}
	w.mu.Unlock()

	call.Finished.Connect(func(finished *restclient.RestCall) {
		w.onFetchSessionCountFinished(finished)
	})
}

func (w *RestSessionManagementWorkflow) onFetchSessionCountFinished(call *restclient.RestCall) {
	w.mu.Lock()
	delete(w.fetchCountCache, call)
	w.mu.Unlock()

	result := getDownloadResult(call)
	if result == DownloadOk {
		count, err := restclient.ParseSessionCount(call.Data())
		if err != nil {
			restSessionLog.WithError(err).Warn("failed to parse session count response")
			result = DownloadError
		} else {
			w.mu.Lock()
			w.sessionCount = count
			w.mu.Unlock()
		}
	}
	w.SessionCountFetched.Emit(result)
}

// GetSession returns the session data downloaded for index, if any.
func (w *RestSessionManagementWorkflow) GetSession(index uint64) (types.SessionData, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	session, ok := w.sessions[index]
	return session, ok
}

// GetSessionMetadata returns the session metadata downloaded for index, if
// any.
func (w *RestSessionManagementWorkflow) GetSessionMetadata(index uint64) (types.SessionMeta, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	meta, ok := w.sessionMetadata[index]
	return meta, ok
}

// DownloadSession issues GET /sessions/{index}/data; SessionDownloadFinished
// fires on completion.
func (w *RestSessionManagementWorkflow) DownloadSession(index uint64) {
	download(w, restclient.GetSessionDataRequest(index), index, w.downloadSessionCache, func(call *restclient.RestCall, index uint64) {
		result := getDownloadResult(call)
		if result == DownloadOk {
			session, err := restclient.ParseSessionData(call.Data())
			if err != nil {
				restSessionLog.WithField("index", index).WithError(err).Warn("failed to parse session data")
				result = DownloadError
			} else {
				w.mu.Lock()
				w.sessions[index] = session
				w.mu.Unlock()
			}
		}
		w.SessionDownloadFinished.Emit(SessionDownloadFinished{Index: index, Result: result})
	})
}

// DownloadSessionMetadata issues GET /sessions/{index}/metadata;
// SessionMetadataDownloadFinished fires on completion.
func (w *RestSessionManagementWorkflow) DownloadSessionMetadata(index uint64) {
	download(w, restclient.GetSessionMetadataRequest(index), index, w.downloadMetadataCache, func(call *restclient.RestCall, index uint64) {
		result := getDownloadResult(call)
		if result == DownloadOk {
			meta, err := restclient.ParseSessionMetadata(call.Data())
			if err != nil {
				restSessionLog.WithField("index", index).WithError(err).Warn("failed to parse session metadata")
				result = DownloadError
			} else {
				w.mu.Lock()
				w.sessionMetadata[index] = meta
				w.mu.Unlock()
			}
		}
		w.SessionMetadataDownloadFinished.Emit(SessionDownloadFinished{Index: index, Result: result})
	})
}

// DownloadAllSessionMetadata fetches the session count (if not already
// known) and then downloads every session's metadata, each reported
// individually via SessionMetadataDownloadFinished.
func (w *RestSessionManagementWorkflow) DownloadAllSessionMetadata() {
	w.mu.Lock()
	count := w.sessionCount
	w.mu.Unlock()

	if count > 0 {
		w.downloadAllMetadataUpTo(count)
		return
	}

	w.SessionCountFetched.Connect(func(result DownloadResult) {
		if result != DownloadOk {
			return
		}
		w.downloadAllMetadataUpTo(w.GetSessionCount())
	})
	w.FetchSessionCount()
}

func (w *RestSessionManagementWorkflow) downloadAllMetadataUpTo(count uint64) {
	for i := uint64(0); i < count; i++ {
		w.DownloadSessionMetadata(i)
	}
}

// download issues request, remembers call against the cache keyed for this
// specific download kind, and invokes handler on completion. The cache
// parameter is always the caller's own map, never shared across download
// kinds, so onDownloadFinished-equivalent cleanup only ever touches the
// cache it was given.
func download(w *RestSessionManagementWorkflow, request restclient.RestRequest, index uint64, cache map[*restclient.RestCall]uint64, handler func(call *restclient.RestCall, index uint64)) {
	call := w.client.Execute(request)
	w.mu.Lock()
	cache[call] = index
	w.mu.Unlock()

	call.Finished.Connect(func(finished *restclient.RestCall) {
		w.mu.Lock()
		delete(cache, finished)
		w.mu.Unlock()
		handler(finished, index)
	})
}

func getDownloadResult(call *restclient.RestCall) DownloadResult {
	if call.Result() == restclient.Success {
		return DownloadOk
	}
	return DownloadError
}
