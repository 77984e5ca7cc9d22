/*
Package favicons renders icon assets from one or more source images.

Every icon is made of planes: one rendered image per target size. For each plane
the best source is selected (vector sources first, then sources that do not need
upscaling, then the closest size), resized to fit inside the plane, composited on
its background and optionally rotated. A single plane is emitted as a PNG image;
several planes, or any artifact named *.ico, are packed into an ICO container.

	sources, err := favicons.LoadSources([]string{"logo.svg", "logo-512.png"})
	if err != nil {
		log.Fatal(err)
	}

	p := &favicons.Processor{
		Scheduler: favicons.HostScheduler(runtime.GOOS),
	}
	artifact, err := p.Assemble(ctx, sources, "favicon.ico", []favicons.PlaneSpec{
		{Width: 16, Height: 16},
		{Width: 32, Height: 32},
		{Width: 48, Height: 48},
	})

The package does not decide which sizes a platform needs and never writes
files; the favicons command in cmd/favicons does both from a YAML plan.
*/
package favicons
