// Package canvas provides a simple retained-mode drawing window. Shapes are
// added to a canvas from any goroutine and stay there, repainted over a
// persistent background pixel buffer, until Clear is called.
//
// # Basic Usage
//
//	c, err := canvas.New(400, 300, nil)
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer c.Close()
//
//	c.AddRectangle(10, 10, 100, 50, canvas.WithFill(color.RGBA{R: 255, A: 255}))
//	c.AddText("hello")
//
// # Threads
//
// Every canvas created on the same [Bridge] shares one UI thread. The thread
// starts with the first canvas and stops when the last one is closed. Calls
// that touch the window or the background buffer are marshaled onto it and
// block until done; adding shapes and reading input latches do not cross
// threads.
//
// # Scale
//
// Shape coordinates and sizes are logical units. [Canvas.SetScale] sets how
// many window pixels make one unit, and existing shapes follow the new
// scale on the next repaint. Bezier curves are the exception: their points
// are window pixels.
//
// # Updates
//
// With [Options.ContinuousUpdate] set (the default) each change repaints the
// window. Otherwise changes accumulate until [Canvas.Render].
//
// # Input
//
// Pointer input is available two ways: the Last* methods return the most
// recent value and whether it is new since the previous call, and the On*
// methods register handlers. Handlers run on the UI thread and must return
// quickly.
//
// # Headless Mode
//
// For tests and servers without a display:
//
//	opts := canvas.DefaultOptions()
//	opts.Headless = true
//	c, _ := canvas.New(100, 100, &opts)
//	c.AddEllipse(10, 10, 50, 50)
//	img, _ := c.Snapshot()
package canvas
