package vulkan

import (
	vk "github.com/goki/vulkan"
	"github.com/vstokstad/vulkan-eng/engine/renderer/metadata"
)

func attachmentReferences(refs []metadata.AttachmentReference) []vk.AttachmentReference {
	if len(refs) == 0 {
		return nil
	}
	out := make([]vk.AttachmentReference, len(refs))
	for i, r := range refs {
		out[i] = vk.AttachmentReference{
			Attachment: r.Attachment,
			Layout:     vk.ImageLayout(r.Layout),
		}
	}
	return out
}

func (c *Context) CreateRenderPass(info metadata.RenderPassCreateInfo) (metadata.RenderPass, error) {
	attachments := make([]vk.AttachmentDescription, len(info.Attachments))
	for i, a := range info.Attachments {
		attachments[i] = vk.AttachmentDescription{
			Format:         vk.Format(a.Format),
			Samples:        vk.SampleCountFlagBits(a.Samples),
			LoadOp:         vk.AttachmentLoadOp(a.LoadOp),
			StoreOp:        vk.AttachmentStoreOp(a.StoreOp),
			StencilLoadOp:  vk.AttachmentLoadOp(a.StencilLoadOp),
			StencilStoreOp: vk.AttachmentStoreOp(a.StencilStoreOp),
			InitialLayout:  vk.ImageLayout(a.InitialLayout),
			FinalLayout:    vk.ImageLayout(a.FinalLayout),
		}
	}

	subpasses := make([]vk.SubpassDescription, len(info.Subpasses))
	for i, s := range info.Subpasses {
		subpasses[i] = vk.SubpassDescription{
			PipelineBindPoint:    vk.PipelineBindPointGraphics,
			ColorAttachmentCount: uint32(len(s.ColorAttachments)),
			PColorAttachments:    attachmentReferences(s.ColorAttachments),
			// one resolve reference per colour attachment when present
			PResolveAttachments: attachmentReferences(s.ResolveAttachments),
		}
		if s.DepthStencilAttachment != nil {
			subpasses[i].PDepthStencilAttachment = &vk.AttachmentReference{
				Attachment: s.DepthStencilAttachment.Attachment,
				Layout:     vk.ImageLayout(s.DepthStencilAttachment.Layout),
			}
		}
	}

	dependencies := make([]vk.SubpassDependency, len(info.Dependencies))
	for i, d := range info.Dependencies {
		dependencies[i] = vk.SubpassDependency{
			SrcSubpass:    d.SrcSubpass,
			DstSubpass:    d.DstSubpass,
			SrcStageMask:  vk.PipelineStageFlags(d.SrcStageMask),
			DstStageMask:  vk.PipelineStageFlags(d.DstStageMask),
			SrcAccessMask: vk.AccessFlags(d.SrcAccessMask),
			DstAccessMask: vk.AccessFlags(d.DstAccessMask),
		}
	}

	createInfo := vk.RenderPassCreateInfo{
		SType:           vk.StructureTypeRenderPassCreateInfo,
		AttachmentCount: uint32(len(attachments)),
		PAttachments:    attachments,
		SubpassCount:    uint32(len(subpasses)),
		PSubpasses:      subpasses,
		DependencyCount: uint32(len(dependencies)),
		PDependencies:   dependencies,
	}
	var renderPass vk.RenderPass
	if res := vk.CreateRenderPass(c.logical(), &createInfo, c.Allocator, &renderPass); res != vk.Success {
		return metadata.NullHandle, toResult(res)
	}
	h := c.newHandle()
	c.renderPasses.put(h, renderPass)
	return h, nil
}

func (c *Context) DestroyRenderPass(renderPass metadata.RenderPass) {
	if rp, ok := c.renderPasses.take(renderPass); ok {
		vk.DestroyRenderPass(c.logical(), rp, c.Allocator)
	}
}

func (c *Context) CreateFramebuffer(info metadata.FramebufferCreateInfo) (metadata.Framebuffer, error) {
	attachments := c.imageViews.getAll(info.Attachments)
	createInfo := vk.FramebufferCreateInfo{
		SType:           vk.StructureTypeFramebufferCreateInfo,
		RenderPass:      c.renderPasses.get(info.RenderPass),
		AttachmentCount: uint32(len(attachments)),
		PAttachments:    attachments,
		Width:           info.Width,
		Height:          info.Height,
		Layers:          1,
	}
	var framebuffer vk.Framebuffer
	if res := vk.CreateFramebuffer(c.logical(), &createInfo, c.Allocator, &framebuffer); res != vk.Success {
		return metadata.NullHandle, toResult(res)
	}
	h := c.newHandle()
	c.framebuffers.put(h, framebuffer)
	return h, nil
}

func (c *Context) DestroyFramebuffer(framebuffer metadata.Framebuffer) {
	if fb, ok := c.framebuffers.take(framebuffer); ok {
		vk.DestroyFramebuffer(c.logical(), fb, c.Allocator)
	}
}
