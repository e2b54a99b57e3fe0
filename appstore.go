// Package appstore provides the public API for the application store.
//
// This is the recommended import for most applications:
//
//	import "github.com/vango-dev/appstore"
//
// Usage:
//
//	st, err := appstore.New(appstore.Config{
//	    Models: []appstore.ModelSpec{
//	        {Name: "users", Endpoint: "https://api.example.com/users"},
//	    },
//	})
//	err = st.ResetData(ctx, initial, App, target)
//	err = st.Fetch(ctx, "users", []string{"1", "2"})
//	err = st.Set(ctx, "users", "1", appstore.Record{"name": "Ada"})
package appstore

import (
	"github.com/vango-dev/appstore/pkg/collection"
	"github.com/vango-dev/appstore/pkg/live"
	"github.com/vango-dev/appstore/pkg/record"
	"github.com/vango-dev/appstore/pkg/store"
	"github.com/vango-dev/appstore/pkg/vdom"
	"github.com/vango-dev/appstore/pkg/view"
)

// =============================================================================
// Store (re-export from pkg/store)
// =============================================================================

// Store is the application store.
type Store = store.Store

// Config configures a Store.
type Config = store.Config

// ModelSpec describes a model type to register.
type ModelSpec = store.ModelSpec

// FetchError reports the ids of a Fetch call that could not be loaded.
type FetchError = store.FetchError

// New creates a Store and registers cfg.Models.
var New = store.New

// FromProps returns the store passed to a component under AppStoreKey.
var FromProps = store.FromProps

// AppStoreKey is the root prop carrying the store.
const AppStoreKey = store.AppStoreKey

// Sentinel errors for use with errors.Is.
var (
	ErrUnregisteredType = store.ErrUnregisteredType
	ErrNetworkFailure   = store.ErrNetworkFailure
	ErrRecordNotFound   = store.ErrRecordNotFound
	ErrInvalidArgument  = store.ErrInvalidArgument
)

// =============================================================================
// Records and collections
// =============================================================================

// Record is one model instance.
type Record = record.Record

// Collection is the per-model record container.
type Collection = collection.Collection

// Constructor builds a Collection for a model.
type Constructor = collection.Constructor

// NewMemory is the default Constructor.
var NewMemory = collection.NewMemory

// =============================================================================
// Views
// =============================================================================

// Props is the property bag passed to a component.
type Props = view.Props

// Component renders props into a tree.
type Component = view.Component

// Target receives rendered frames.
type Target = view.Target

// Frame is one rendered state of a mounted component.
type Frame = view.Frame

// VNode is a virtual DOM node.
type VNode = vdom.VNode

// NewHub creates a live WebSocket target.
var NewHub = live.NewHub
