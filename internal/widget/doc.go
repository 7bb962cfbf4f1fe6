/*
Package widget implements the driver card shown inside the agent host.

The card is a small state machine over the drivers in the latest tool result:
an empty placeholder, a single card, or a carousel with wrap-around
navigation. Book, schedule and details buttons hand a follow-up prompt back
to the host; contact is answered locally.

Session and Renderer drive the same states on the server side, which backs
the preview endpoint and the tests. BundleSource serves the browser bundle
from web/dist after checking it in a sandbox.
*/
package widget
